package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Store        = (*MemoryStore)(nil)
	_ EventLog     = (*MemoryStore)(nil)
	_ HeightSource = (*ManualHeight)(nil)
	_ HeightSource = HeightFunc(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
