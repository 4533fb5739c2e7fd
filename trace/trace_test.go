package trace

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRecorder_Record(t *testing.T) {
	r := NewRecorder(3)
	for i, to := range []int{0, 1, 2, 0, 1} {
		r.Record(uint64(100*i), to-1, to, false)
	}
	if got, want := r.Sequence(), []int{2, 0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Sequence() = %v, want %v", got, want)
	}
	if r.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", r.Dropped())
	}
	if r.Total() != 5 {
		t.Errorf("Total() = %d, want 5", r.Total())
	}
	if ev := r.Events(); ev[0].Seq != 2 || ev[0].Cycle != 200 {
		t.Errorf("oldest event = %+v, want Seq 2 at cycle 200", ev[0])
	}
	r.Reset()
	if r.Len() != 0 || r.Total() != 0 {
		t.Errorf("Reset() left Len %d, Total %d", r.Len(), r.Total())
	}
}

func TestSlices(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		end    uint64
		want   []Slice
	}{
		{"empty", nil, 10, nil},
		{
			"single dispatch runs to the end",
			[]Event{{Cycle: 5, From: -1, To: 0}},
			50,
			[]Slice{{Slot: 0, Start: 5, End: 50}},
		},
		{
			"consecutive dispatches",
			[]Event{{Cycle: 0, To: 0}, {Cycle: 900, To: 1}, {Cycle: 1800, To: 0}},
			2000,
			[]Slice{{0, 0, 900}, {1, 900, 1800}, {0, 1800, 2000}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slices(tt.events, tt.end); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Slices() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.png")
	events := []Event{
		{Cycle: 0, From: -1, To: 0},
		{Cycle: 900, From: 0, To: 1},
		{Cycle: 1000, From: 1, To: 0, Exit: true},
	}
	if err := Render(path, events, 2, 1900); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() == 0 {
		t.Error("Render() wrote an empty file")
	}
	if err := Render(path, events, 0, 1900); err == nil {
		t.Error("Render() with no slots didn't fail")
	}
}
