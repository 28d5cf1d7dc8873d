package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" vip ", "", "lead", "vip"})
	want := []string{"vip", "lead"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := NormalizeTags(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSplitCSV(t *testing.T) {
	if got := SplitCSV(""); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
	got := SplitCSV("a, b,,a")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("unexpected %v", got)
	}
}

func TestParseUint(t *testing.T) {
	if ParseUint("42") != 42 {
		t.Error("expected 42")
	}
	if ParseUint("-1") != 0 || ParseUint("abc") != 0 {
		t.Error("expected 0 for invalid input")
	}
}
