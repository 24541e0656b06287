package app

import (
	"reflect"
	"testing"
)

func TestTranscriptStoreSaveAndLoad(t *testing.T) {
	store := NewTranscriptStore(t.TempDir())
	repo := Repository{
		URL:   "https://github.com/octocat/hello-world",
		Owner: "octocat",
		Name:  "hello-world",
	}
	msgs := []Message{
		NewUserMessage("What does this repo do?"),
		NewAssistantMessage("It's a demo.", nil),
	}

	if err := store.Save(repo, msgs); err != nil {
		t.Fatalf("save: %v", err)
	}

	rec, err := store.Load("octocat", "hello-world")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Repository.URL != repo.URL {
		t.Fatalf("repository mismatch: %#v", rec.Repository)
	}
	if len(rec.Messages) != 2 || rec.Messages[0].Content != msgs[0].Content {
		t.Fatalf("messages did not round trip: %#v", rec.Messages)
	}
	if rec.SavedAt.IsZero() {
		t.Fatalf("SavedAt must be set")
	}
}

func TestTranscriptStoreSkipsEmptyConversations(t *testing.T) {
	store := NewTranscriptStore(t.TempDir())
	repo := Repository{Owner: "octocat", Name: "empty"}

	if err := store.Save(repo, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Load("octocat", "empty"); err == nil {
		t.Fatalf("empty conversations should not create files")
	}
}

func TestTranscriptStoreList(t *testing.T) {
	store := NewTranscriptStore(t.TempDir())

	if keys, err := store.List(); err != nil || keys != nil {
		t.Fatalf("list on missing root = %v, %v; want nil, nil", keys, err)
	}

	for _, repo := range []Repository{
		{Owner: "octocat", Name: "hello-world"},
		{Owner: "another", Name: "project"},
	} {
		if err := store.Save(repo, []Message{NewUserMessage("hi")}); err != nil {
			t.Fatalf("save %s/%s: %v", repo.Owner, repo.Name, err)
		}
	}

	keys, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"another/project", "octocat/hello-world"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %#v, want %#v", keys, want)
	}
}
