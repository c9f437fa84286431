package brepio

import (
	"log/slog"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want %d", o.batchSize, DefaultBatchSize)
	}
	if o.angular != AngularDeflection {
		t.Errorf("angular = %v, want %v", o.angular, AngularDeflection)
	}
	if o.logger != nil || o.identity != nil {
		t.Error("logger and identity should default to nil")
	}
}

func TestOptions(t *testing.T) {
	l := slog.New(nopHandler{})
	id := NewIdentity()

	tests := []struct {
		name  string
		opt   Option
		check func(o options) bool
	}{
		{"logger", WithLogger(l), func(o options) bool { return o.logger == l }},
		{"batch size", WithBatchSize(64), func(o options) bool { return o.batchSize == 64 }},
		{"batch size zero", WithBatchSize(0), func(o options) bool { return o.batchSize == DefaultBatchSize }},
		{"batch size negative", WithBatchSize(-3), func(o options) bool { return o.batchSize == DefaultBatchSize }},
		{"angular", WithAngularDeflection(0.1), func(o options) bool { return o.angular == 0.1 }},
		{"angular ignored", WithAngularDeflection(-1), func(o options) bool { return o.angular == AngularDeflection }},
		{"identity", WithIdentity(id), func(o options) bool { return o.identity == id }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			if !tt.check(o) {
				t.Errorf("option not applied: %+v", o)
			}
		})
	}
}

func TestSessionOptions(t *testing.T) {
	id := NewIdentity()
	s, err := NewSession(&fakeKernel{}, WithIdentity(id), WithAngularDeflection(0.25))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if s.Identity() != id {
		t.Error("session does not use the shared identity")
	}
	if p := meshParams(DefaultDeflection, s.opts.angular); p.AngularDeflection != 0.25 || p.Parallel || !p.Relative {
		t.Errorf("meshParams() = %+v", p)
	}
	if s.logger() != Logger() {
		t.Error("session without logger should use the package logger")
	}
}
