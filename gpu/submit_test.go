package gpu

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/picodraw"
)

func TestSplitSegments(t *testing.T) {
	batch := func() *quadBatch { return &quadBatch{QuadCount: 1} }
	red := [4]float32{1, 0, 0, 1}
	blue := [4]float32{0, 0, 1, 0.5}

	items := []passItem{
		{Batch: batch()},
		{Clear: &red},
		{Batch: batch()},
		{Batch: batch()},
		{Clear: &blue},
	}
	segs := splitSegments(items)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}

	// Quads recorded before any clear keep what the target held.
	if segs[0].load != gputypes.LoadOpLoad || len(segs[0].batches) != 1 {
		t.Errorf("segment 0 = %v load, %d batches, want load with 1 batch",
			segs[0].load, len(segs[0].batches))
	}
	if segs[1].load != gputypes.LoadOpClear || len(segs[1].batches) != 2 {
		t.Errorf("segment 1 = %v load, %d batches, want clear with 2 batches",
			segs[1].load, len(segs[1].batches))
	}
	if segs[1].clear != (gputypes.Color{R: 1, A: 1}) {
		t.Errorf("segment 1 clear = %+v, want red", segs[1].clear)
	}

	// A trailing clear with no draws still needs its own pass.
	if segs[2].load != gputypes.LoadOpClear || len(segs[2].batches) != 0 {
		t.Errorf("segment 2 = %v load, %d batches, want empty clear",
			segs[2].load, len(segs[2].batches))
	}
	if segs[2].clear != (gputypes.Color{B: 1, A: 0.5}) {
		t.Errorf("segment 2 clear = %+v, want blue", segs[2].clear)
	}
}

func TestSplitSegmentsEmptyPass(t *testing.T) {
	if segs := splitSegments(nil); len(segs) != 0 {
		t.Errorf("empty pass produced %d segments", len(segs))
	}
}

func TestSpirvWords(t *testing.T) {
	words, err := spirvWords([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	// The SPIR-V magic number decodes little endian.
	if words[0] != 0x07230203 || words[1] != 0x00010000 {
		t.Errorf("words = %#x, want magic and version", words)
	}

	if _, err := spirvWords([]byte{1, 2, 3}); err == nil {
		t.Error("truncated module accepted")
	}
	if _, err := spirvWords(nil); err == nil {
		t.Error("empty module accepted")
	}
}

func TestWordBytesRoundTrip(t *testing.T) {
	words := []uint32{
		math.Float32bits(1.5),
		0xdeadbeef,
		uint32(0xfffffff9), // -7 as i32
	}
	back, err := spirvWords(wordBytes(words))
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range words {
		if back[i] != w {
			t.Errorf("word %d = %#x, want %#x", i, back[i], w)
		}
	}
}

func TestGlobalsBytes(t *testing.T) {
	got := globalsBytes(picodraw.Size{Width: 640, Height: 360})
	if len(got) != 16 {
		t.Fatalf("uniform is %d bytes, want 16", len(got))
	}
	want := wordBytes([]uint32{
		math.Float32bits(640), math.Float32bits(360), 0, 0,
	})
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("uniform = % x, want % x", got, want)
		}
	}
}

func TestDeviceErrorMapsDeviceLost(t *testing.T) {
	err := deviceError("submit frame", fmt.Errorf("vkQueueSubmit: %w", hal.ErrDeviceLost))
	if !errors.Is(err, ErrDeviceLost) {
		t.Errorf("lost device maps to %v, want ErrDeviceLost", err)
	}

	err = deviceError("create buffer", hal.ErrDeviceOutOfMemory)
	if errors.Is(err, ErrDeviceLost) {
		t.Errorf("out of memory mapped to ErrDeviceLost: %v", err)
	}
	if !errors.Is(err, hal.ErrDeviceOutOfMemory) {
		t.Errorf("cause lost in %v", err)
	}
}

// The device resolves at first submission, not at New, so a backend on
// a foreign provider constructs fine and fails only when it draws.
func TestSubmitResolvesProviderDevice(t *testing.T) {
	b, err := New(newMockProvider())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Close)

	// No passes, no device needed.
	if err := b.Draw(picodraw.NewCommandBuffer()); err != nil {
		t.Fatalf("empty draw touched the device: %v", err)
	}

	sh := createShader(t, b, solidTrace)
	buf := picodraw.NewCommandBuffer()
	size := picodraw.Size{Width: 8, Height: 8}
	if err := buf.Screen(size).Quad(sh, picodraw.BoundsForSize(size)).Float4(1, 1, 1, 1).End(); err != nil {
		t.Fatal(err)
	}
	err = b.Draw(buf)
	if err == nil {
		t.Fatal("mock provider device accepted")
	}
	if !strings.Contains(err.Error(), "*wgpu.Device") {
		t.Errorf("error %v does not name the expected device type", err)
	}
}
