package settings

import (
	"context"
	"testing"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func() context.Context
		wantOk     bool
		wantValues *Run
	}{
		{
			name: "context_with_settings",
			setupCtx: func() context.Context {
				return IntoContext(context.Background(), &Run{NoColor: true, AppName: "dashboards"})
			},
			wantOk:     true,
			wantValues: &Run{NoColor: true, AppName: "dashboards"},
		},
		{
			name:     "context_without_settings",
			setupCtx: context.Background,
			wantOk:   false,
		},
		{
			name: "context_with_wrong_type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), settingsContextKey, "wrong type")
			},
			wantOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.setupCtx())
			if ok != tt.wantOk {
				t.Fatalf("FromContext() ok = %v; want %v", ok, tt.wantOk)
			}
			if !tt.wantOk {
				if got != nil {
					t.Errorf("FromContext() got = %v; want nil", got)
				}
				return
			}
			if *got != *tt.wantValues {
				t.Errorf("FromContext() = %+v; want %+v", got, tt.wantValues)
			}
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	got := FromContextOrDefault(context.Background())
	if got == nil || got.AppName != DefaultAppName {
		t.Fatalf("FromContextOrDefault() = %+v; want CLI defaults", got)
	}

	stored := &Run{AppName: "visualize"}
	got = FromContextOrDefault(IntoContext(context.Background(), stored))
	if got != stored {
		t.Error("FromContextOrDefault() should return the stored pointer")
	}
}
