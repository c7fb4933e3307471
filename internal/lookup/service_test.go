package lookup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/iceq"
	"github.com/imeilookup/imeilookup/internal/lookup"
	"github.com/imeilookup/imeilookup/internal/recent"
)

type fakeAdapter struct {
	provider device.Provider
	payload  device.Payload
	err      error
	calls    []string
}

func (f *fakeAdapter) Provider() device.Provider { return f.provider }

func (f *fakeAdapter) FetchRaw(_ context.Context, id string) (device.Payload, error) {
	f.calls = append(f.calls, id)
	return f.payload, f.err
}

func (f *fakeAdapter) Normalize(p device.Payload) device.Data {
	return iceq.Normalize(p)
}

type recordedCall struct {
	provider string
	err      error
}

type fakeMetrics struct {
	calls    []recordedCall
	outcomes []bool
}

func (m *fakeMetrics) RecordOutcome(_ context.Context, _, _ string, found bool) {
	m.outcomes = append(m.outcomes, found)
}

func (m *fakeMetrics) RecordRequest(_ context.Context, provider string, _ time.Duration, err error) {
	m.calls = append(m.calls, recordedCall{provider, err})
}

func newService(adapter *fakeAdapter, metrics *fakeMetrics) (*lookup.Service, *recent.Service) {
	recents := recent.NewService(recent.ServiceConfig{
		Repository: recent.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	svc := lookup.NewService(lookup.ServiceConfig{
		Adapters: []lookup.Adapter{adapter},
		Recent:   recents,
		Metrics:  metrics,
		Logger:   zerolog.Nop(),
	})
	return svc, recents
}

func TestService_Lookup(t *testing.T) {
	adapter := &fakeAdapter{
		provider: device.ProviderICEQ,
		payload: device.ArrayPayload(
			device.Record{"model": "SM-G991U", "working": "fail"},
			device.Record{"marketing_name": "Galaxy S21", "model": "SM-G991U", "memory_size": "128GB", "carrier": "Verizon", "sim_lock": "locked", "working": "pass"},
		),
	}
	metrics := &fakeMetrics{}
	svc, recents := newService(adapter, metrics)
	ctx := context.Background()

	result, err := svc.Lookup(ctx, device.ProviderICEQ, "  356938035643809 ")
	require.NoError(t, err)

	assert.Equal(t, []string{"356938035643809"}, adapter.calls)
	assert.True(t, result.Found)
	assert.Equal(t, device.InputIMEI, result.Kind)
	assert.Equal(t, "Galaxy S21 - 128GB - Verizon (LOCKED)", result.Display.SKU)
	assert.Equal(t, device.StatusPass, result.Display.Status)
	assert.Equal(t, "PASS", result.Display.StatusLabel)

	items := recents.List(ctx, device.ProviderICEQ)
	require.Len(t, items, 1)
	assert.Equal(t, "356938035643809", items[0].IMEI)
	assert.Equal(t, "SM-G991U", items[0].Model)

	require.Len(t, metrics.calls, 1)
	assert.Equal(t, "iceq", metrics.calls[0].provider)
	assert.NoError(t, metrics.calls[0].err)
	assert.Equal(t, []bool{true}, metrics.outcomes)
}

func TestService_LookupNotFound(t *testing.T) {
	adapter := &fakeAdapter{provider: device.ProviderICEQ, payload: device.Payload{Kind: device.PayloadEmpty}}
	metrics := &fakeMetrics{}
	svc, recents := newService(adapter, metrics)
	ctx := context.Background()

	result, err := svc.Lookup(ctx, device.ProviderICEQ, "F2LXK0ABHG7F")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.True(t, result.Data.IsEmpty())
	assert.Equal(t, device.InputSerial, result.Kind)
	assert.Empty(t, recents.List(ctx, device.ProviderICEQ))
	assert.Equal(t, []bool{false}, metrics.outcomes)
}

func TestService_LookupValidation(t *testing.T) {
	adapter := &fakeAdapter{provider: device.ProviderPhonecheck}
	svc, _ := newService(adapter, &fakeMetrics{})

	_, err := svc.Lookup(context.Background(), device.ProviderPhonecheck, "")
	assert.ErrorIs(t, err, device.ErrInputRequired)

	_, err = svc.Lookup(context.Background(), device.ProviderPhonecheck, "12-34")
	var verr *device.ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Empty(t, adapter.calls, "invalid input never reaches the provider")
}

func TestService_LookupUnknownProvider(t *testing.T) {
	svc, _ := newService(&fakeAdapter{provider: device.ProviderPhonecheck}, &fakeMetrics{})

	assert.True(t, svc.Supports(device.ProviderPhonecheck))
	assert.False(t, svc.Supports(device.ProviderICEQ))

	_, err := svc.Lookup(context.Background(), device.ProviderICEQ, "356938035643809")
	assert.ErrorIs(t, err, device.ErrUnknownProvider)
}

func TestService_LookupProviderError(t *testing.T) {
	upstream := &device.ProviderRequestError{Provider: device.ProviderICEQ, StatusCode: 500, Body: "boom"}
	adapter := &fakeAdapter{provider: device.ProviderICEQ, err: upstream}
	metrics := &fakeMetrics{}
	svc, recents := newService(adapter, metrics)

	_, err := svc.Lookup(context.Background(), device.ProviderICEQ, "356938035643809")
	assert.ErrorIs(t, err, upstream)

	require.Len(t, metrics.calls, 1)
	assert.Error(t, metrics.calls[0].err)
	assert.Empty(t, metrics.outcomes)
	assert.Empty(t, recents.List(context.Background(), device.ProviderICEQ))
}
