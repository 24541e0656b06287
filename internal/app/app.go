package app

import "time"

// Application wires the session core together: one Session, one Chat
// orchestrator bound to the backend client, and the optional transcript
// store. The TUI and the CLI subcommands receive it by injection.
type Application struct {
	Config      Config
	Logger      *Logger
	Client      *Client
	Session     *Session
	Chat        *Chat
	Transcripts *TranscriptStore
}

func NewApplication(cfg Config) *Application {
	logger := NewLogger(DefaultLogWriter())
	client := NewClient(cfg.BackendURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second, logger)
	session := NewSession()

	var transcripts *TranscriptStore
	if cfg.SaveTranscripts {
		transcripts = NewTranscriptStore(cfg.TranscriptDir)
	}

	return &Application{
		Config:      cfg,
		Logger:      logger,
		Client:      client,
		Session:     session,
		Chat:        NewChat(session, client, logger),
		Transcripts: transcripts,
	}
}

// SaveTranscript persists the current conversation if transcript saving is
// enabled and there is anything to save.
func (a *Application) SaveTranscript() {
	if a.Transcripts == nil {
		return
	}
	repo, ok := a.Session.Repository()
	if !ok {
		return
	}
	if err := a.Transcripts.Save(repo, a.Session.Transcript()); err != nil {
		a.Logger.Warn("failed to save transcript", map[string]interface{}{
			"repo":  repo.URL,
			"error": err.Error(),
		})
	}
}
