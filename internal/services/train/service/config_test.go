package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/store"
)

const baseYAML = `
model:
  name: base/coder
  max_seq_length: 2048
lora:
  r: 8
  target_modules: [q_proj, v_proj]
  lora_alpha: 16
  bias: none
data:
  train_path: [a.json, org/code]
  text_column: text
  eos_token: "</s>"
training:
  per_device_train_batch_size: 1
  gradient_accumulation_steps: 4
  num_train_epochs: 1
  learning_rate: 2.0e-5
  logging_steps: 5
  output_dir: out
save:
  final_model_path: out/final
trainer:
  command: [python, train.py]
`

func TestLoad_Base(t *testing.T) {
	cfg, err := Load(strings.NewReader(baseYAML), nil)
	require.NoError(t, err)
	assert.Equal(t, "base/coder", cfg.Model.Name)
	assert.Equal(t, []string{"a.json", "org/code"}, cfg.Data.TrainPath)
	assert.Equal(t, "</s>", cfg.Data.EOSToken)
	assert.InDelta(t, 2e-5, cfg.Training.LearningRate, 1e-12)
	assert.Equal(t, DefaultDataDir, cfg.Data.OutputDir)
	assert.Equal(t, []string{"python", "train.py"}, cfg.Trainer.Command)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(strings.NewReader(baseYAML), []string{
		"training.learning_rate=1e-4",
		"model.load_in_4bit=true",
		"lora.target_modules=[q_proj]",
		"data.eos_token=<|endoftext|>",
		"save.upload_uri=s3://models/cpt",
		"trainer.env.CUDA_VISIBLE_DEVICES=0",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1e-4, cfg.Training.LearningRate, 1e-12)
	assert.True(t, cfg.Model.LoadIn4bit)
	assert.Equal(t, []string{"q_proj"}, cfg.LoRA.TargetModules)
	assert.Equal(t, "<|endoftext|>", cfg.Data.EOSToken)
	assert.Equal(t, "s3://models/cpt", cfg.Save.UploadURI)
	assert.Equal(t, map[string]string{"CUDA_VISIBLE_DEVICES": "0"}, cfg.Trainer.Env)
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		sets  []string
		code  perr.ErrorCode
		field string
	}{
		{"missing model", []string{"model.name="}, perr.ErrorCodeValidation, "model.name"},
		{"zero rank", []string{"lora.r=0"}, perr.ErrorCodeValidation, "lora.r"},
		{"bad bias", []string{"lora.bias=some"}, perr.ErrorCodeValidation, "lora.bias"},
		{"no sources", []string{"data.train_path=[]"}, perr.ErrorCodeValidation, "data.train_path"},
		{"bucketless upload", []string{"save.upload_uri=s3://"}, perr.ErrorCodeValidation, "save.upload_uri"},
		{"unknown key", []string{"training.turbo=true"}, perr.ErrorCodeValidation, ""},
		{"not key value", []string{"training.seed"}, perr.ErrorCodeInvalidArgument, "set"},
		{"scalar as section", []string{"model.name.first=x"}, perr.ErrorCodeInvalidArgument, "set"},
		{"empty segment", []string{"model..name=x"}, perr.ErrorCodeInvalidArgument, "set"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(baseYAML), c.sets)
			require.Error(t, err)
			assert.Equal(t, c.code, perr.CodeOf(err), err.Error())
			if c.field != "" {
				e, ok := perr.As(err)
				require.True(t, ok)
				assert.Equal(t, c.field, e.Field())
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(strings.NewReader("model: [unclosed"), nil)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDecode))
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cpt.yaml")
	require.NoError(t, os.WriteFile(p, []byte(baseYAML), 0o644))

	cfg, err := LoadFile(context.Background(), &store.Store{}, p, []string{"training.seed=7"})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Training.Seed)

	_, err = LoadFile(context.Background(), &store.Store{}, p+".missing", nil)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestLoad_ShippedConfig(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "..", "..", "configs", "cpt_train.yaml"))
	require.NoError(t, err)
	defer f.Close()

	cfg, err := Load(f, nil)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Data.TextColumn)
	assert.Equal(t, "unsloth", cfg.LoRA.UseGradientCheckpointing)
}
