package config

import "strings"

// SMS 短信下发配置
// Driver: log 仅写日志；amqp 推送到 RabbitMQ 队列，由外部网关消费
// 验证码有效期由 app_settings.otp_expiry_minutes 决定
type SMS struct {
	Driver    string `yaml:"driver" json:"driver"`
	AMQPURL   string `yaml:"amqp_url" json:"amqp_url"`
	Queue     string `yaml:"queue" json:"queue"`
	OTPLength int    `yaml:"otp_length" json:"otp_length"`
}

const (
	DefaultOTPLength = 6
	DefaultSMSQueue  = "pigeon.sms"
)

func (s SMS) DriverOrDefault() string {
	d := strings.ToLower(strings.TrimSpace(s.Driver))
	if d == "" {
		return "log"
	}
	return d
}

func (s SMS) QueueOrDefault() string {
	if q := strings.TrimSpace(s.Queue); q != "" {
		return q
	}
	return DefaultSMSQueue
}

func (s SMS) OTPLengthOrDefault() int {
	if s.OTPLength < 4 || s.OTPLength > 10 {
		return DefaultOTPLength
	}
	return s.OTPLength
}
