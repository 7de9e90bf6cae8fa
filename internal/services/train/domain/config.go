// Package domain holds the training driver's config, job and ports
package domain

// Config is the training run description loaded from YAML
type Config struct {
	Model    ModelConfig    `yaml:"model"    json:"model"`
	LoRA     LoRAConfig     `yaml:"lora"     json:"lora"`
	Data     DataConfig     `yaml:"data"     json:"data"`
	Training TrainingConfig `yaml:"training" json:"training"`
	Save     SaveConfig     `yaml:"save"     json:"save"`
	Trainer  TrainerConfig  `yaml:"trainer"  json:"trainer"`
}

// ModelConfig names the base model and how it is loaded
type ModelConfig struct {
	Name         string `yaml:"name"           json:"name"           validate:"required"`
	MaxSeqLength int    `yaml:"max_seq_length" json:"max_seq_length" validate:"min=1"`
	Dtype        string `yaml:"dtype"          json:"dtype,omitempty"`
	LoadIn4bit   bool   `yaml:"load_in_4bit"   json:"load_in_4bit"`
}

// LoRAConfig is the adapter configuration
type LoRAConfig struct {
	R                        int            `yaml:"r"                          json:"r"              validate:"min=1"`
	TargetModules            []string       `yaml:"target_modules"             json:"target_modules" validate:"min=1,dive,required"`
	Alpha                    int            `yaml:"lora_alpha"                 json:"lora_alpha"     validate:"min=1"`
	Dropout                  float64        `yaml:"lora_dropout"               json:"lora_dropout"   validate:"gte=0,lte=1"`
	Bias                     string         `yaml:"bias"                       json:"bias"           validate:"oneof=none all lora_only"`
	UseGradientCheckpointing string         `yaml:"use_gradient_checkpointing" json:"use_gradient_checkpointing"`
	RandomState              int            `yaml:"random_state"               json:"random_state"`
	UseRSLoRA                bool           `yaml:"use_rslora"                 json:"use_rslora"`
	LoftQConfig              map[string]any `yaml:"loftq_config"               json:"loftq_config,omitempty"`
}

// DataConfig lists the sources and how records become training text
type DataConfig struct {
	TrainPath  []string `yaml:"train_path"  json:"train_path"  validate:"min=1,dive,required"`
	TextColumn string   `yaml:"text_column" json:"text_column" validate:"required"`
	EOSToken   string   `yaml:"eos_token"   json:"eos_token"   validate:"required"`
	OutputDir  string   `yaml:"output_dir"  json:"output_dir"  validate:"omitempty,location"`
}

// TrainingConfig carries the optimiser and schedule settings passed to the trainer
type TrainingConfig struct {
	PerDeviceTrainBatchSize   int     `yaml:"per_device_train_batch_size" json:"per_device_train_batch_size" validate:"min=1"`
	GradientAccumulationSteps int     `yaml:"gradient_accumulation_steps" json:"gradient_accumulation_steps" validate:"min=1"`
	WarmupRatio               float64 `yaml:"warmup_ratio"                json:"warmup_ratio"                validate:"gte=0,lte=1"`
	NumTrainEpochs            float64 `yaml:"num_train_epochs"            json:"num_train_epochs"            validate:"gt=0"`
	LearningRate              float64 `yaml:"learning_rate"               json:"learning_rate"               validate:"gt=0"`
	EmbeddingLearningRate     float64 `yaml:"embedding_learning_rate"     json:"embedding_learning_rate"     validate:"gte=0"`
	LoggingSteps              int     `yaml:"logging_steps"               json:"logging_steps"               validate:"min=1"`
	Optim                     string  `yaml:"optim"                       json:"optim"`
	WeightDecay               float64 `yaml:"weight_decay"                json:"weight_decay"                validate:"gte=0"`
	LRSchedulerType           string  `yaml:"lr_scheduler_type"           json:"lr_scheduler_type"`
	Seed                      int     `yaml:"seed"                        json:"seed"`
	OutputDir                 string  `yaml:"output_dir"                  json:"output_dir"                  validate:"required"`
	ReportTo                  string  `yaml:"report_to"                   json:"report_to"`
	SaveOnlyModel             bool    `yaml:"save_only_model"             json:"save_only_model"`
	SaveStrategy              string  `yaml:"save_strategy"               json:"save_strategy"               validate:"omitempty,oneof=no steps epoch"`
}

// SaveConfig says where the final model lands and where it is published
type SaveConfig struct {
	FinalModelPath string `yaml:"final_model_path" json:"final_model_path"     validate:"required"`
	UploadURI      string `yaml:"upload_uri"       json:"upload_uri,omitempty" validate:"omitempty,location"`
}

// TrainerConfig is the external process that performs the training
type TrainerConfig struct {
	Command []string          `yaml:"command" json:"command" validate:"min=1,dive,required"`
	Dir     string            `yaml:"dir"     json:"dir,omitempty"`
	Env     map[string]string `yaml:"env"     json:"env,omitempty"`
}
