package bootstrap

import (
	"smartivr/internal/audio"
	"smartivr/internal/classify"
	"smartivr/internal/config"
	"smartivr/internal/handoff"
	"smartivr/internal/logging"
	"smartivr/internal/ports"
	"smartivr/internal/providers/deepgram"
	"smartivr/internal/storage"
	"smartivr/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Flow   *usecase.FlowController
	Config config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})

	audioCfg := ports.AudioConfig{
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		InputFormat: cfg.Audio.InputFormat,
		InputDevice: cfg.Audio.InputDevice,
	}
	capture := audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand)

	provider := deepgram.NewProvider(deepgram.Config{
		APIKey:      cfg.Deepgram.APIKey,
		APIBaseURL:  cfg.Deepgram.APIBaseURL,
		Model:       cfg.Deepgram.Model,
		SmartFormat: cfg.Deepgram.SmartFormat,
	}, capture, audioCfg)

	gateway := classify.New(classify.Config{
		BaseURL:         cfg.Backend.BaseURL,
		DemoMode:        cfg.Backend.DemoMode,
		Timeout:         cfg.Backend.RequestTimeout,
		DemoLatency:     cfg.Backend.DemoLatency,
		LocalConfidence: cfg.Flow.LocalConfidence,
	}, logging.WithComponent("classify"))

	flow := usecase.NewFlowController(
		usecase.NewCaptureSession(capture, audioCfg, eventSink, logging.WithComponent("capture")),
		usecase.NewTranscriptionStream(provider, cfg.Speech.SilenceTimeout, eventSink, logging.WithComponent("speech")),
		storage.NewDiskStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL, logging.WithComponent("storage")),
		gateway,
		clipboard,
		eventSink,
		handoff.New(handoff.NewMemoryStore()),
		usecase.Config{
			DefaultLanguage: cfg.Flow.DefaultLanguage,
			Phases:          usecase.DefaultPhases(),
			SettleDelay:     cfg.Flow.SettleDelay,
			FrameInterval:   cfg.Flow.FrameInterval,
		},
		logging.WithComponent("flow"),
	)

	return Services{Flow: flow, Config: cfg}, nil
}
