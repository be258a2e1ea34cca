// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlcxxtest

import "testing"

func TestDiffIdentical(t *testing.T) {
	if d := Diff("a\nb\n", "a\nb\n"); d != "" {
		t.Fatalf("Diff of identical strings = %q, want empty", d)
	}
}

func TestDiffReportsLine(t *testing.T) {
	d := Diff("a\nb\nc\n", "a\nX\nc\n")
	if d == "" {
		t.Fatal("Diff of differing strings returned empty")
	}
	t.Log(d)
}

func TestValueUpdate(t *testing.T) {
	v := ValueOf(0b1010, 4)
	mask := ValueOf(0b0011, 4)
	data := ValueOf(0b0101, 4)
	got := v.Update(mask, data)
	if want := uint64(0b1001); got.Uint64() != want {
		t.Fatalf("Update() = %04b, want %04b", got.Uint64(), want)
	}
}

func TestValueSlice(t *testing.T) {
	v := ValueOf(0b10110, 5)
	got := v.Slice(3, 1)
	if want := uint64(0b011); got.Uint64() != want {
		t.Fatalf("Slice(3,1) = %03b, want %03b", got.Uint64(), want)
	}
}

func TestValueBitXor(t *testing.T) {
	a := ValueOf(0b1100, 4)
	b := ValueOf(0b1010, 4)
	got := a.BitXor(b)
	if want := uint64(0b0110); got.Uint64() != want {
		t.Fatalf("BitXor() = %04b, want %04b", got.Uint64(), want)
	}
}

func TestValueTruncatesToWidth(t *testing.T) {
	v := ValueOf(0xff, 4)
	if v.Uint64() != 0xf {
		t.Fatalf("ValueOf truncation = %#x, want 0xf", v.Uint64())
	}
}
