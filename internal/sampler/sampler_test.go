package sampler

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDevice struct {
	name      string
	load      float64
	vram      uint64
	failAfter int32 // LoadFraction calls before failing; < 0 means never
	calls     atomic.Int32
}

func (d *stubDevice) Name() string {
	return d.name
}

func (d *stubDevice) LoadFraction() (float64, error) {
	n := d.calls.Add(1)
	if d.failAfter >= 0 && n > d.failAfter {
		return 0, errors.New("query failed")
	}
	return d.load, nil
}

func (d *stubDevice) VRAMUsed() (uint64, error) {
	return d.vram, nil
}

type stubProvider struct {
	device Device
	err    error
	opens  int
}

func (p *stubProvider) Name() string {
	return "stub"
}

func (p *stubProvider) Open() (Device, error) {
	p.opens++
	if p.err != nil {
		return nil, p.err
	}
	return p.device, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartUnavailableProvider(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: errors.New("no device")}
	smp := New(provider, 10*time.Millisecond, discardLogger())

	require.False(t, smp.Start())
	require.Equal(t, 1, provider.opens)

	smp.Stop()
	assert.Nil(t, smp.Summary())
}

func TestStopWithoutStartIsIdempotent(t *testing.T) {
	t.Parallel()

	smp := New(&stubProvider{err: errors.New("no device")}, 10*time.Millisecond, discardLogger())

	smp.Stop()
	smp.Stop()
	assert.Nil(t, smp.Summary())
}

func TestCollectsSamplesUntilStopped(t *testing.T) {
	t.Parallel()

	device := &stubDevice{name: "Radeon Test", load: 0.25, vram: 512 * 1024 * 1024, failAfter: -1}
	smp := New(&stubProvider{device: device}, 5*time.Millisecond, discardLogger())

	require.True(t, smp.Start())
	time.Sleep(40 * time.Millisecond)
	smp.Stop()
	smp.Stop() // idempotent after a successful run too

	summary := smp.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, "stub", summary.Provider)
	assert.Equal(t, "Radeon Test", summary.Device)
	assert.InDelta(t, 0.005, summary.SampleIntervalSeconds, 1e-9)
	assert.GreaterOrEqual(t, summary.SampleCount, 1)
	assert.InDelta(t, 25.0, summary.AvgGPULoadPercent, 1e-9)
	assert.InDelta(t, 25.0, summary.MaxGPULoadPercent, 1e-9)
	assert.InDelta(t, 512.0, summary.AvgVRAMMB, 1e-9)
	assert.InDelta(t, 512.0, summary.MaxVRAMMB, 1e-9)
}

func TestStartOnlyOnce(t *testing.T) {
	t.Parallel()

	device := &stubDevice{load: 0.1, vram: 1024, failAfter: -1}
	smp := New(&stubProvider{device: device}, 5*time.Millisecond, discardLogger())

	require.True(t, smp.Start())
	assert.False(t, smp.Start(), "second Start while running must be rejected")

	smp.Stop()
	assert.False(t, smp.Start(), "Start after Stop must be rejected")
}

func TestQueryFailureHaltsLoop(t *testing.T) {
	t.Parallel()

	device := &stubDevice{load: 0.5, vram: 1024, failAfter: 2}
	smp := New(&stubProvider{device: device}, 2*time.Millisecond, discardLogger())

	require.True(t, smp.Start())
	time.Sleep(50 * time.Millisecond)
	smp.Stop()

	summary := smp.Summary()
	require.NotNil(t, summary, "samples collected before the failure are retained")
	assert.Equal(t, 2, summary.SampleCount)

	// The loop must be dead: no further device queries happen.
	before := device.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, device.calls.Load())
}

func TestSummaryNilWithoutSamples(t *testing.T) {
	t.Parallel()

	device := &stubDevice{load: 0.5, vram: 1024, failAfter: 0}
	smp := New(&stubProvider{device: device}, 2*time.Millisecond, discardLogger())

	require.True(t, smp.Start())
	time.Sleep(20 * time.Millisecond)
	smp.Stop()

	assert.Nil(t, smp.Summary())
}

func TestSummaryRounding(t *testing.T) {
	t.Parallel()

	smp := New(&stubProvider{}, time.Second, discardLogger())
	smp.samples = []Sample{
		{LoadFraction: 0.12345, VRAMBytes: 1 * 1024 * 1024 * 1024},
		{LoadFraction: 0.6789, VRAMBytes: 2 * 1024 * 1024 * 1024},
	}

	summary := smp.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.SampleCount)
	assert.InDelta(t, 1.0, summary.SampleIntervalSeconds, 1e-9)
	assert.InDelta(t, 40.12, summary.AvgGPULoadPercent, 1e-9)
	assert.InDelta(t, 67.89, summary.MaxGPULoadPercent, 1e-9)
	assert.InDelta(t, 1536.0, summary.AvgVRAMMB, 1e-9)
	assert.InDelta(t, 2048.0, summary.MaxVRAMMB, 1e-9)
	assert.Empty(t, summary.Device)
}
