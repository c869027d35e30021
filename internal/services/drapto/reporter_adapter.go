package drapto

import (
	"log/slog"

	draptolib "github.com/five82/drapto"

	"splicer/internal/logging"
	"splicer/internal/render"
)

const (
	stageCompose = "compose"
	stageEncode  = "encode"
)

// progressReporter adapts the Drapto Reporter interface to render progress
// callbacks. Events without a progress meaning are logged.
type progressReporter struct {
	callback func(render.Progress)
	logger   *slog.Logger
}

func newProgressReporter(callback func(render.Progress), logger *slog.Logger) *progressReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &progressReporter{callback: callback, logger: logger}
}

func (r *progressReporter) emit(p render.Progress) {
	if r.callback != nil {
		r.callback(p)
	}
}

func (r *progressReporter) Hardware(s draptolib.HardwareSummary) {
	r.logger.Debug("drapto hardware", logging.Any("hostname", s.Hostname))
}

func (r *progressReporter) Initialization(s draptolib.InitializationSummary) {
	r.logger.Debug("drapto initialized",
		logging.Any("input_file", s.InputFile),
		logging.Any("resolution", s.Resolution),
		logging.Any("dynamic_range", s.DynamicRange),
	)
}

func (r *progressReporter) StageProgress(s draptolib.StageProgress) {
	r.emit(render.Progress{
		Stage:   s.Stage,
		Percent: float64(s.Percent),
		Message: s.Message,
	})
}

func (r *progressReporter) CropResult(s draptolib.CropSummary) {
	r.logger.Debug("drapto crop detection",
		logging.Any("crop", s.Crop),
		logging.Any("required", s.Required),
		logging.Any("disabled", s.Disabled),
	)
}

func (r *progressReporter) EncodingConfig(s draptolib.EncodingConfigSummary) {
	r.logger.Info("drapto encoding config",
		logging.Any("encoder", s.Encoder),
		logging.Any("preset", s.Preset),
		logging.Any("quality", s.Quality),
		logging.Any("audio_codec", s.AudioCodec),
	)
}

func (r *progressReporter) EncodingStarted(totalFrames uint64) {
	r.emit(render.Progress{Stage: stageEncode, Message: "encoding started"})
	r.logger.Debug("drapto encoding started", logging.Int64("total_frames", int64(totalFrames)))
}

func (r *progressReporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	r.emit(render.Progress{
		Stage:   stageEncode,
		Percent: float64(s.Percent),
		Message: encodeMessage(float64(s.Speed), float64(s.FPS), s.ETA),
	})
}

func (r *progressReporter) ValidationComplete(s draptolib.ValidationSummary) {
	for _, step := range s.Steps {
		if !step.Passed {
			logging.WarnWithContext(r.logger, "drapto validation step failed", "drapto_validation",
				logging.Any("step", step.Name),
				logging.Any("details", step.Details),
			)
		}
	}
}

func (r *progressReporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.emit(render.Progress{Stage: stageEncode, Percent: 100, Message: "encoding complete"})
	r.logger.Info("drapto encoding complete",
		logging.Any("output_file", s.OutputFile),
		logging.Int64("original_size", int64(s.OriginalSize)),
		logging.Int64("encoded_size", int64(s.EncodedSize)),
		logging.Any("total_time", s.TotalTime),
	)
}

func (r *progressReporter) Warning(message string) {
	logging.WarnWithContext(r.logger, "drapto warning", "drapto_warning", logging.Any("detail", message))
}

func (r *progressReporter) Error(e draptolib.ReporterError) {
	logging.ErrorWithContext(r.logger, "drapto error", "drapto_error",
		logging.Any("title", e.Title),
		logging.Any("detail", e.Message),
		logging.Any(logging.FieldErrorHint, e.Suggestion),
	)
}

func (r *progressReporter) OperationComplete(message string) {
	r.logger.Debug("drapto operation complete", logging.Any("detail", message))
}

func (r *progressReporter) BatchStarted(s draptolib.BatchStartInfo) {
	r.logger.Debug("drapto batch started", logging.Any("total_files", s.TotalFiles))
}

func (r *progressReporter) FileProgress(s draptolib.FileProgressContext) {
	r.logger.Debug("drapto file progress", logging.Any("current_file", s.CurrentFile), logging.Any("total_files", s.TotalFiles))
}

func (r *progressReporter) BatchComplete(s draptolib.BatchSummary) {
	r.logger.Debug("drapto batch complete", logging.Any("successful", s.SuccessfulCount), logging.Any("total_files", s.TotalFiles))
}

var _ draptolib.Reporter = (*progressReporter)(nil)
