package board

import (
	"reflect"
	"sync"
	"testing"
)

type display struct {
	mu    sync.Mutex
	lines []string
}

func (d *display) WriteConsole(msg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = append(d.lines, msg)
	return nil
}

func TestLED(t *testing.T) {
	b := New(nil)
	if b.Red.On() || b.Green.On() {
		t.Fatal("LEDs on at power up")
	}
	b.Green.Toggle()
	b.Green.Set(true)
	b.Green.Toggle()
	if b.Green.On() || b.Green.Toggles() != 2 {
		t.Errorf("green on %v, toggles %d, want off and 2", b.Green.On(), b.Green.Toggles())
	}
}

func TestButton(t *testing.T) {
	b := New(nil)
	if b.Button.Pressed() {
		t.Fatal("Pressed() = true before any press")
	}
	b.Button.Press()
	b.Button.Press()
	if !b.Button.Pressed() {
		t.Error("Pressed() = false after Press()")
	}
	if b.Button.Pressed() {
		t.Error("press still latched after it was read")
	}
	if b.Button.Presses() != 2 {
		t.Errorf("Presses() = %d, want 2", b.Button.Presses())
	}
}

func TestBoard_Hold(t *testing.T) {
	b := New(nil)
	if b.Hold() != DefaultHold {
		t.Errorf("Hold() = %d, want %d", b.Hold(), DefaultHold)
	}
	b.SetHold(25)
	if b.Hold() != 25 {
		t.Errorf("Hold() = %d, want 25", b.Hold())
	}
	b.Halt()
	if !b.Halted() {
		t.Error("Halted() = false after Halt()")
	}
}

func TestLCD_ShowNumber(t *testing.T) {
	tests := []struct {
		n    uint
		want string
	}{
		{0, "     0"},
		{42, "    42"},
		{999999, "999999"},
		{1234567, "234567"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			l := NewLCD(nil)
			l.ShowNumber(tt.n)
			if l.Text() != tt.want {
				t.Errorf("ShowNumber(%d) = %q, want %q", tt.n, l.Text(), tt.want)
			}
		})
	}
}

func TestLCD_Commit(t *testing.T) {
	d := &display{}
	l := NewLCD(d)
	l.ShowNumber(1)
	l.ShowNumber(1)
	l.ShowChar('A', 1)
	l.ShowChar('B', 7)
	l.ShowChar(0x07, 2)
	l.Commit()

	want := []string{"     1", "A    1"}
	if got := l.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %q, want %q", got, want)
	}
	if !reflect.DeepEqual(d.lines, []string{"LCD [     1]", "LCD [A    1]"}) {
		t.Errorf("display got %q", d.lines)
	}
}

func TestFrames(t *testing.T) {
	f := Frames("HI")
	if len(f) != 2+Digits+1 {
		t.Fatalf("len(Frames()) = %d, want %d", len(f), 2+Digits+1)
	}
	if f[0] != "      " || f[1] != "     H" || f[2] != "    HI" || f[len(f)-1] != "      " {
		t.Errorf("Frames(HI) = %q", f)
	}
}
