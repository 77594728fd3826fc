package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CredentialStore = (*MemoryCredentialStore)(nil)
	_ CredentialCodec = JSONCredentialCodec{}
	_ SessionBinding  = (*Manager)(nil)
	_ Dispatcher      = (*Gateway)(nil)
	_ MetricsRecorder = NopMetricsRecorder{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
