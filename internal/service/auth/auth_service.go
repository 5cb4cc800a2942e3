package authsvc

import (
	"context"
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/metrics"
	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/server/auth"
	"pigeon/internal/server/sms"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// 单个验证码允许的错误尝试次数
const maxOTPAttempts = 5

// Principal 已认证的请求主体（用户或管理员）
type Principal struct {
	Kind         string
	ID           string
	Role         string
	SessionToken string
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Kind == auth.KindAdmin }

func (p *Principal) IsUser() bool { return p != nil && p.Kind == auth.KindUser }

type Service struct {
	store     *repository.Store
	sender    sms.Sender
	settings  config.AuthSettings
	otpDigits int
	log       *zap.Logger
}

func NewService(store *repository.Store, sender sms.Sender, settings config.AuthSettings, otpDigits int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if otpDigits <= 0 {
		otpDigits = config.DefaultOTPLength
	}
	return &Service{store: store, sender: sender, settings: settings, otpDigits: otpDigits, log: log}
}

type OTPTicket struct {
	Phone     string    `json:"phone_number"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyInput struct {
	Phone     string
	Code      string
	Name      string
	IP        string
	UserAgent string
}

type Login struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
	Created   bool         `json:"created"`
}

type AdminLogin struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     *models.Admin `json:"admin"`
}

func NormalizePhone(phone string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if !phonePattern.MatchString(p) {
		return "", apperr.InvalidArg("invalid phone number")
	}
	return p, nil
}

// RequestOTP 生成验证码并通过短信下发；之前未使用的验证码全部作废
func (s *Service) RequestOTP(ctx context.Context, phone string, purpose models.OTPPurpose) (*OTPTicket, error) {
	phone, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if purpose != models.OTPPurposeSignup && purpose != models.OTPPurposeLogin {
		return nil, apperr.InvalidArg("purpose must be signup or login")
	}
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if st.MaintenanceMode {
		return nil, apperr.Unavailable("service is under maintenance")
	}

	var userID *string
	existing, err := s.store.GetUserByPhone(ctx, phone)
	switch {
	case err != nil && !apperr.IsCode(err, apperr.CodeNotFound):
		return nil, err
	case purpose == models.OTPPurposeSignup:
		if !st.SignupEnabled {
			return nil, apperr.Forbidden("signup is disabled")
		}
		if existing != nil {
			return nil, apperr.Conflict("phone number already registered")
		}
	default:
		if existing == nil {
			return nil, apperr.NotFound("user not found")
		}
		if existing.Disabled {
			return nil, apperr.Forbidden("account disabled")
		}
		userID = &existing.ID
	}

	code, err := auth.GenerateOTP(s.otpDigits)
	if err != nil {
		return nil, err
	}
	otp := &models.OTP{
		PhoneNumber: phone,
		UserID:      userID,
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(time.Duration(st.OTPExpiryMinutes) * time.Minute),
	}
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.InvalidateOTPs(ctx, phone); err != nil {
			return err
		}
		return tx.CreateOTP(ctx, otp)
	})
	if err != nil {
		return nil, err
	}

	if err := s.dispatch(ctx, phone, string(purpose), fmt.Sprintf("Your verification code is %s", code)); err != nil {
		return nil, err
	}
	return &OTPTicket{Phone: phone, Purpose: string(purpose), ExpiresAt: otp.ExpiresAt}, nil
}

// dispatch 下发短信并记录审计；下发失败时返回 UNAVAILABLE
func (s *Service) dispatch(ctx context.Context, phone, purpose, text string) error {
	entry := &models.SmsLog{PhoneNumber: phone, Message: text, Status: models.SmsStatusSent}
	reqID, sendErr := s.sender.Send(ctx, phone, text)
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = models.SmsStatusFailed
		entry.Error = &msg
		s.log.Error("sms dispatch failed", zap.Error(sendErr))
	} else {
		entry.ProviderRequestID = &reqID
	}
	metrics.OTPRequested(purpose, string(entry.Status))
	if err := s.store.CreateSmsLog(ctx, entry); err != nil {
		s.log.Error("write sms log", zap.Error(err))
	}
	if sendErr != nil {
		return apperr.Wrap(apperr.CodeUnavailable, "could not send verification code", sendErr)
	}
	return nil
}

// VerifyOTP 校验验证码，注册时创建用户，最后建立会话并签发令牌
func (s *Service) VerifyOTP(ctx context.Context, in VerifyInput) (*Login, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, apperr.InvalidArg("code is required")
	}
	otp, err := s.store.LatestOTP(ctx, phone)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, apperr.Unauthorized("invalid or expired code")
	}
	if err != nil {
		return nil, err
	}
	if !time.Now().Before(otp.ExpiresAt) {
		return nil, apperr.Unauthorized("invalid or expired code")
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		if err := s.store.FailOTP(ctx, otp.ID, maxOTPAttempts); err != nil {
			return nil, err
		}
		return nil, apperr.Unauthorized("invalid or expired code")
	}

	token, err := auth.GenerateToken(s.settings.TokenBytes)
	if err != nil {
		return nil, err
	}
	out := &Login{}
	sess := &models.Session{Token: token, ExpiresAt: time.Now().Add(s.settings.SessionTTL)}
	if in.IP != "" {
		sess.IP = &in.IP
	}
	if in.UserAgent != "" {
		ua := in.UserAgent
		if len(ua) > 256 {
			ua = ua[:256]
		}
		sess.UserAgent = &ua
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.ConsumeOTP(ctx, otp.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Unauthorized("invalid or expired code")
		}
		var u *models.User
		if otp.Purpose == models.OTPPurposeSignup {
			u = &models.User{PhoneNumber: phone, Name: strings.TrimSpace(in.Name), Role: models.RoleUser}
			if err := tx.CreateUser(ctx, u); err != nil {
				if apperr.IsCode(err, apperr.CodeAlreadyExists) {
					return apperr.Conflict("phone number already registered")
				}
				return err
			}
			out.Created = true
		} else {
			if u, err = tx.GetUserByPhone(ctx, phone); err != nil {
				return err
			}
			if u.Disabled {
				return apperr.Forbidden("account disabled")
			}
		}
		sess.UserID = u.ID
		out.User = u
		return tx.CreateSession(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	out.Token, out.ExpiresAt, err = auth.SignToken(auth.KindUser, out.User.ID, token, string(out.User.Role), s.settings.SessionTTL, s.settings.JWTSecret)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Logout 撤销当前会话；管理员令牌无状态，直接成功
func (s *Service) Logout(ctx context.Context, p *Principal) error {
	if !p.IsUser() {
		return nil
	}
	_, err := s.store.RevokeSession(ctx, p.SessionToken)
	return err
}

// Authenticate 解析 Bearer 令牌；用户令牌必须对应有效会话
func (s *Service) Authenticate(ctx context.Context, bearer string) (*Principal, error) {
	claims, err := auth.ParseAndValidate(bearer, s.settings.JWTSecret)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	if claims.Kind == auth.KindAdmin {
		a, err := s.store.GetAdmin(ctx, claims.Subject)
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("invalid token")
		}
		if err != nil {
			return nil, err
		}
		return &Principal{Kind: auth.KindAdmin, ID: a.ID, Role: "admin"}, nil
	}

	sess, err := s.store.ActiveSession(ctx, claims.ID)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, apperr.Unauthorized("session expired")
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.Subject {
		return nil, apperr.Unauthorized("invalid token")
	}
	u, err := s.store.GetUser(ctx, sess.UserID)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, apperr.Unauthorized("invalid token")
	}
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, apperr.Forbidden("account disabled")
	}
	return &Principal{Kind: auth.KindUser, ID: u.ID, Role: string(u.Role), SessionToken: sess.Token}, nil
}

// AdminLogin 校验管理员口令并签发短期令牌
func (s *Service) AdminLogin(ctx context.Context, username, password string) (*AdminLogin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.InvalidArg("username and password are required")
	}
	a, err := s.store.GetAdminByUsername(ctx, username)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := s.store.TouchAdminLogin(ctx, a.ID); err != nil {
		return nil, err
	}
	token, exp, err := auth.SignToken(auth.KindAdmin, a.ID, "", "admin", s.settings.AdminTTL, s.settings.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &AdminLogin{Token: token, ExpiresAt: exp, Admin: a}, nil
}
