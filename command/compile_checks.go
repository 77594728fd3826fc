package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LoginMessage]         = (*LoginCommand)(nil)
	_ gocmd.Commander[RegisterMessage]      = (*RegisterCommand)(nil)
	_ gocmd.Commander[LogoutMessage]        = (*LogoutCommand)(nil)
	_ gocmd.Commander[UpdateProfileMessage] = (*UpdateProfileCommand)(nil)
	_ gocmd.Commander[ResetPasswordMessage] = (*ResetPasswordCommand)(nil)
)
