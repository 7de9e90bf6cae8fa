package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecorpus/internal/core/dataset"
	"codecorpus/internal/core/strategy"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/services/sft/domain"
)

type call struct{ system, user string }

// scriptedChat answers with reply(user) and records every call
type scriptedChat struct {
	calls []call
	reply func(n int, user string) (string, error)
}

func (s *scriptedChat) Complete(_ context.Context, system, user string) (string, error) {
	s.calls = append(s.calls, call{system, user})
	if s.reply == nil {
		return "응답입니다", nil
	}
	return s.reply(len(s.calls), user)
}

func rec(path, content string) dataset.CodeRecord {
	return dataset.CodeRecord{RepoID: "acme/x", FilePath: path, Content: content, Size: len(content)}
}

func TestGenerate_PairsPerRecord(t *testing.T) {
	chat := &scriptedChat{}
	g := New(chat, Config{})

	pairs, err := g.Generate(context.Background(), []dataset.CodeRecord{
		rec("a.py", "def a():\n    return 1\n"),
		rec("b.go", "package b\n"),
	}, 3, true)
	require.NoError(t, err)
	require.Len(t, pairs, 6)

	var got []string
	for _, p := range pairs[:3] {
		got = append(got, p.Metadata.Strategy)
		assert.Equal(t, "acme/x", p.Metadata.RepoID)
		assert.Equal(t, "a.py", p.Metadata.FilePath)
	}
	assert.Equal(t, []string{"code_documentation", "code_completion", "function_implementation"}, got)
	assert.Len(t, chat.calls, 6)
}

func TestGenerate_MoreThanMenu(t *testing.T) {
	g := New(&scriptedChat{}, Config{})
	pairs, err := g.Generate(context.Background(), []dataset.CodeRecord{rec("a.py", "x = 1")}, 99, true)
	require.NoError(t, err)
	assert.Len(t, pairs, len(strategy.DefaultMenu()))
}

func TestGenerate_SkipsLongRecords(t *testing.T) {
	chat := &scriptedChat{}
	g := New(chat, Config{MaxCodeLength: 5})

	// five Hangul syllables are five characters even though they are fifteen bytes
	pairs, err := g.Generate(context.Background(), []dataset.CodeRecord{
		rec("long.py", "x = 123456"),
		rec("ok.py", "가나다라마"),
	}, 1, true)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "ok.py", pairs[0].Metadata.FilePath)
	assert.Len(t, chat.calls, 1)
}

func TestGenerate_SkipErrorsContinues(t *testing.T) {
	chat := &scriptedChat{reply: func(n int, _ string) (string, error) {
		if n == 2 {
			return "", perr.FromStatus(429, "chat", "slow down")
		}
		return "좋은 답변", nil
	}}
	g := New(chat, Config{})

	pairs, err := g.Generate(context.Background(), []dataset.CodeRecord{rec("a.py", "x = 1")}, 3, true)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "code_documentation", pairs[0].Metadata.Strategy)
	assert.Equal(t, "function_implementation", pairs[1].Metadata.Strategy)
}

func TestGenerate_AbortWithoutSkip(t *testing.T) {
	chat := &scriptedChat{reply: func(n int, _ string) (string, error) {
		if n == 2 {
			return "", perr.FromStatus(503, "chat", "busy")
		}
		return "ok", nil
	}}
	g := New(chat, Config{})

	pairs, err := g.Generate(context.Background(), []dataset.CodeRecord{rec("a.py", "x = 1"), rec("b.py", "y = 2")}, 3, false)
	require.Error(t, err)
	assert.Nil(t, pairs)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Contains(t, err.Error(), "code_completion")
	assert.Contains(t, err.Error(), "a.py")
	assert.Len(t, chat.calls, 2, "nothing runs after the failure")
}

func TestApply_FunctionImplementation(t *testing.T) {
	code := "def add(a, b):\n    return a + b"
	chat := &scriptedChat{reply: func(int, string) (string, error) {
		return "  두 수를 더하는 함수를 구현하세요.  ", nil
	}}
	g := New(chat, Config{})

	r := g.Apply(context.Background(), strategy.FunctionImplementation, rec("math/add.py", code))
	require.NoError(t, r.Err)
	assert.Equal(t, strategy.FunctionImplementation, r.Strategy)
	assert.Equal(t, "두 수를 더하는 함수를 구현하세요.", r.Pair.Instruction)
	assert.Equal(t, "```python\n"+code+"\n```", r.Pair.Output)
	assert.Equal(t, "function_implementation", r.Pair.Metadata.Strategy)
}

func TestApply_FunctionImplementationUnknownLanguage(t *testing.T) {
	g := New(&scriptedChat{}, Config{})
	r := g.Apply(context.Background(), strategy.FunctionImplementation, rec("Makefile", "all:"))
	require.NoError(t, r.Err)
	assert.Equal(t, "```\nall:\n```", r.Pair.Output)
}

func TestApply_CompletionUsesPrefix(t *testing.T) {
	lines := []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9", "l10"}
	chat := &scriptedChat{}
	g := New(chat, Config{})

	r := g.Apply(context.Background(), strategy.Completion, rec("a.py", strings.Join(lines, "\n")))
	require.NoError(t, r.Err)
	assert.Contains(t, r.Pair.Instruction, "l7")
	assert.NotContains(t, r.Pair.Instruction, "l8")
	assert.NotContains(t, chat.calls[0].user, "l8")
	assert.Equal(t, "응답입니다", r.Pair.Output)
}

func TestApply_EmptyReply(t *testing.T) {
	chat := &scriptedChat{reply: func(int, string) (string, error) { return " \n", nil }}
	r := New(chat, Config{}).Apply(context.Background(), strategy.Summary, rec("a.py", "x"))
	assert.True(t, perr.IsCode(r.Err, perr.ErrorCodeUpstream))
}

func TestGenerate_EmptyReplyYieldsFewerPairs(t *testing.T) {
	chat := &scriptedChat{reply: func(n int, _ string) (string, error) {
		if n == 1 {
			return "   ", nil
		}
		return "답변", nil
	}}
	g := New(chat, Config{})

	pairs, err := g.Generate(context.Background(), []dataset.CodeRecord{rec("a.py", "x = 1")}, 3, true)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "code_completion", pairs[0].Metadata.Strategy)

	_, err = New(&scriptedChat{reply: func(int, string) (string, error) { return "", nil }}, Config{}).
		Generate(context.Background(), []dataset.CodeRecord{rec("a.py", "x = 1")}, 1, false)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUpstream))
}

func TestRun_SampleSizeAndValidation(t *testing.T) {
	chat := &scriptedChat{}
	g := New(chat, Config{})
	recs := []dataset.CodeRecord{rec("a.py", "1"), rec("b.py", "2"), rec("c.py", "3")}

	pairs, err := g.Run(context.Background(), domain.Request{Records: recs, StrategiesPerRecord: 1, SampleSize: 2, SkipErrors: true})
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	_, err = g.Run(context.Background(), domain.Request{Records: recs, StrategiesPerRecord: 0})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
}

func TestNew_MenuIsCopied(t *testing.T) {
	menu := []strategy.Kind{strategy.Summary, strategy.Explanation}
	g := New(&scriptedChat{}, Config{Menu: menu})
	menu[0] = strategy.BugDetection
	assert.Equal(t, strategy.Summary, g.Menu()[0])

	assert.Panics(t, func() { New(&scriptedChat{}, Config{Menu: []strategy.Kind{0}}) })
	assert.Panics(t, func() { New(nil, Config{}) })
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&scriptedChat{}, Config{}).Generate(ctx, []dataset.CodeRecord{rec("a.py", "x")}, 1, true)
	assert.True(t, errors.Is(err, context.Canceled))
}
