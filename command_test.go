package picodraw

import (
	"errors"
	"testing"
)

func testShader(kinds ...SlotKind) Shader {
	inputs := make([]InputSlot, len(kinds))
	for i, k := range kinds {
		inputs[i] = InputSlot{Addr: OpAddr(i), Kind: k}
	}
	return NewShader(1, inputs)
}

var testSize = Size{Width: 64, Height: 64}

func TestRecordScreenPass(t *testing.T) {
	sh := testShader(SlotFloat, SlotFloat, SlotInt)

	buf := NewCommandBuffer()
	frame := buf.Screen(testSize)
	frame.Clear(0, 0, 0, 1)
	err := frame.Quad(sh, Bounds{MaxX: 32, MaxY: 32}).
		Float(1.5).
		Float(2.5).
		Int(7).
		End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if err := buf.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	want := []CommandKind{
		CmdBeginScreen, CmdClear, CmdBeginQuad,
		CmdWriteFloat, CmdWriteFloat, CmdWriteInt, CmdEndQuad,
	}
	cmds := buf.Commands()
	if len(cmds) != len(want) {
		t.Fatalf("commands = %d, want %d", len(cmds), len(want))
	}
	for i, k := range want {
		if cmds[i].Kind != k {
			t.Errorf("command %d = %s, want %s", i, cmds[i].Kind, k)
		}
	}
}

func TestRecordWrongSlotKind(t *testing.T) {
	sh := testShader(SlotFloat, SlotInt)

	buf := NewCommandBuffer()
	frame := buf.Screen(testSize)
	err := frame.Quad(sh, Bounds{MaxX: 8, MaxY: 8}).
		Int(1). // slot 0 wants a float
		End()
	if err == nil {
		t.Fatal("wrong slot kind accepted")
	}
	if !errors.Is(err, ErrRecording) {
		t.Errorf("error is not a recording error: %v", err)
	}
	// The failed quad rolls back; only the pass command remains.
	if got := len(buf.Commands()); got != 1 {
		t.Errorf("commands after rollback = %d, want 1", got)
	}
	if buf.Err() == nil {
		t.Error("error did not latch")
	}
}

func TestRecordTooFewSlots(t *testing.T) {
	sh := testShader(SlotFloat, SlotFloat, SlotFloat)

	buf := NewCommandBuffer()
	err := buf.Screen(testSize).Quad(sh, Bounds{MaxX: 8, MaxY: 8}).
		Float(1).
		Float(2).
		End()
	if !errors.Is(err, ErrRecording) {
		t.Fatalf("missing slot not reported: %v", err)
	}
	var re *RecordingError
	if !errors.As(err, &re) {
		t.Fatalf("error is %T, want *RecordingError", err)
	}
	if re.Cmd != CmdEndQuad {
		t.Errorf("error command = %s, want EndQuad", re.Cmd)
	}
}

func TestRecordTooManyWrites(t *testing.T) {
	sh := testShader(SlotFloat)

	buf := NewCommandBuffer()
	err := buf.Screen(testSize).Quad(sh, Bounds{MaxX: 8, MaxY: 8}).
		Float(1).
		Float(2).
		End()
	if !errors.Is(err, ErrRecording) {
		t.Fatalf("extra write not reported: %v", err)
	}
}

func TestRecordWriteAfterEnd(t *testing.T) {
	sh := testShader(SlotFloat)

	buf := NewCommandBuffer()
	q := buf.Screen(testSize).Quad(sh, Bounds{MaxX: 8, MaxY: 8}).Float(1)
	if err := q.End(); err != nil {
		t.Fatal(err)
	}
	q.Float(2)
	if buf.Err() == nil {
		t.Error("write after End did not latch an error")
	}
}

func TestFinishWithOpenQuad(t *testing.T) {
	sh := testShader(SlotFloat)

	buf := NewCommandBuffer()
	buf.Screen(testSize).Quad(sh, Bounds{MaxX: 8, MaxY: 8}).Float(1)
	if err := buf.Finish(); !errors.Is(err, ErrRecording) {
		t.Fatalf("open quad passed Finish: %v", err)
	}
}

func TestRecordQuadBeforePass(t *testing.T) {
	sh := testShader()

	buf := NewCommandBuffer()
	frame := &Frame{buf: buf}
	frame.Quad(sh, Bounds{MaxX: 8, MaxY: 8})
	if !errors.Is(buf.Err(), ErrRecording) {
		t.Fatalf("quad without pass accepted: %v", buf.Err())
	}
}

func TestRecordEmptyScreen(t *testing.T) {
	buf := NewCommandBuffer()
	buf.Screen(Size{})
	if !errors.Is(buf.Err(), ErrRecording) {
		t.Fatalf("empty screen accepted: %v", buf.Err())
	}
}

func TestErrorLatches(t *testing.T) {
	sh := testShader(SlotFloat)

	buf := NewCommandBuffer()
	buf.Screen(Size{}) // latches
	first := buf.Err()

	frame := buf.Screen(testSize)
	frame.Clear(0, 0, 0, 1)
	_ = frame.Quad(sh, Bounds{MaxX: 8, MaxY: 8}).Float(1).End()

	if buf.Err() != first {
		t.Error("latched error was replaced")
	}
	if got := len(buf.Commands()); got != 0 {
		t.Errorf("commands recorded after latch = %d, want 0", got)
	}
}

func TestReset(t *testing.T) {
	sh := testShader(SlotFloat)

	buf := NewCommandBuffer()
	buf.Screen(Size{}) // latch an error
	buf.Reset()

	if buf.Err() != nil {
		t.Fatal("Reset did not clear the error")
	}
	err := buf.Screen(testSize).Quad(sh, Bounds{MaxX: 8, MaxY: 8}).Float(1).End()
	if err != nil {
		t.Fatalf("recording after Reset failed: %v", err)
	}
	if err := buf.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestTargetPass(t *testing.T) {
	buf := NewCommandBuffer()
	buf.Target(RenderTexture(3)).Clear(1, 0, 0, 1)
	if err := buf.Finish(); err != nil {
		t.Fatal(err)
	}
	cmds := buf.Commands()
	if cmds[0].Kind != CmdBeginTarget || cmds[0].Target != 3 {
		t.Errorf("unexpected pass command %+v", cmds[0])
	}
}

func TestZeroRenderTextureTarget(t *testing.T) {
	buf := NewCommandBuffer()
	buf.Target(0)
	if !errors.Is(buf.Err(), ErrRecording) {
		t.Fatalf("zero target accepted: %v", buf.Err())
	}
}
