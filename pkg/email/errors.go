package email

import "errors"

var (
	ErrFailedToSendEmail  = errors.New("email.errors.failed_to_send_email")
	ErrInvalidConfig      = errors.New("email.errors.invalid_config")
	ErrInvalidParams      = errors.New("email.errors.invalid_params")
	ErrAddressNotFound    = errors.New("email.errors.address_not_found")
	ErrMailerNil          = errors.New("email.errors.mailer_is_nil")
	ErrAddressResolverNil = errors.New("email.errors.address_resolver_is_nil")
)
