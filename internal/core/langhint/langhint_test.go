package langhint

import (
	"strings"
	"testing"
)

func TestPredominant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"12345 !!!", ""},
		{"hello world", "Latin"},
		{"안녕하세요 여러분 hi", "Hangul"},
		{"Привет мир", "Cyrillic"},
	}
	for _, tt := range tests {
		if got := Predominant(tt.in); got != tt.want {
			t.Fatalf("Predominant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrittenIn(t *testing.T) {
	korean := "이 함수는 두 숫자를 더한 결과를 반환합니다. 입력은 정수이며 출력도 정수입니다."
	code := "```python\ndef add(a, b):\n    return a + b\n```"

	if !WrittenIn(korean+"\n"+code, "Korean") {
		t.Fatalf("korean prose with code should pass")
	}
	if WrittenIn(code+"\nThis function adds two numbers.", "Korean") {
		t.Fatalf("english-only answer should fail a Korean check")
	}
	if !WrittenIn(code, "English") {
		t.Fatalf("latin languages always pass")
	}
	if !WrittenIn("", "Klingon") {
		t.Fatalf("unlisted languages always pass")
	}
	if WrittenIn(strings.Repeat("가", minLetters-1), " korean ") {
		t.Fatalf("below threshold should fail")
	}
}

func TestScriptsFor(t *testing.T) {
	if s, ok := ScriptsFor("Japanese"); !ok || len(s) != 3 {
		t.Fatalf("ScriptsFor(Japanese) = %v, %v", s, ok)
	}
	if _, ok := ScriptsFor("French"); ok {
		t.Fatalf("French is written in Latin")
	}
}
