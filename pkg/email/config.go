package email

// Config holds email delivery configuration.
// Postmark tokens are optional to support development environments where
// email sending is replaced by the DevSender. SenderEmail establishes the
// sender identity for all outbound notification emails.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL"`
}
