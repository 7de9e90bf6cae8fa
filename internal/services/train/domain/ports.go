package domain

import (
	"context"

	"codecorpus/internal/core/dataset"
)

// CPTTemplate frames one record for continued pre-training; the EOS token is appended after it
const CPTTemplate = "\n# File: {file_path}\n\n# Code Content:\n{content}\n"

// Job is the file handed to the external trainer
type Job struct {
	RunID          string         `json:"run_id,omitempty"`
	Model          ModelConfig    `json:"model"`
	LoRA           LoRAConfig     `json:"lora"`
	Training       TrainingConfig `json:"training"`
	Dataset        JobDataset     `json:"dataset"`
	FinalModelPath string         `json:"final_model_path"`
}

// JobHelp documents the job file for trainer authors
const JobHelp = `The trainer is started as: <trainer.command...> --job <output_dir>/job.json
It must train and save the model to final_model_path. job.json holds:
  run_id            id of the corpus-train run
  model             name, max_seq_length, dtype, load_in_4bit
  lora              r, target_modules, lora_alpha, lora_dropout, bias,
                    use_gradient_checkpointing, random_state, use_rslora, loftq_config
  training          the training section of the config, as given
  dataset           path, format ("parquet"), text_column, rows
  final_model_path  directory the trainer must create`

// JobDataset points the trainer at the formatted dataset
type JobDataset struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	TextColumn string `json:"text_column"`
	Rows       int    `json:"rows"`
}

// Result summarises one driver run
type Result struct {
	Rows        int
	PerSource   []dataset.Count
	DatasetPath string
	JobPath     string
	Trained     bool
	Uploaded    int
}

// RunnerPort is the driver surface used by the binary
type RunnerPort interface {
	Run(ctx context.Context, cfg Config, dryRun bool) (Result, error)
}

// Loader reads every record of one data source
type Loader interface {
	Load(ctx context.Context, source string) ([]dataset.CodeRecord, error)
}

// Trainer runs training for a job file
type Trainer interface {
	Train(ctx context.Context, jobPath string) error
}

// TrainerFactory builds a Trainer from the trainer section of the config
type TrainerFactory func(TrainerConfig) Trainer

// Artifacts persists the dataset and job and publishes the final model
type Artifacts interface {
	WriteBytes(ctx context.Context, uri string, b []byte, contentType string) error
	WriteJSON(ctx context.Context, uri string, v any) error
	UploadDir(ctx context.Context, dir, uri string) (int, error)
}
