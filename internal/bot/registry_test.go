package bot

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

// stubModule is a test double for Module
type stubModule struct {
	name          string
	commands      []*discordgo.ApplicationCommand
	handlers      map[string]InteractionHandler
	eventHandlers []EventHandler
	initErr       error
	shutErr       error
}

func (m *stubModule) Name() string                                   { return m.name }
func (m *stubModule) Commands() []*discordgo.ApplicationCommand      { return m.commands }
func (m *stubModule) CommandHandlers() map[string]InteractionHandler { return m.handlers }
func (m *stubModule) EventHandlers() []EventHandler                  { return m.eventHandlers }
func (m *stubModule) Init(deps ModuleDependencies) error             { return m.initErr }
func (m *stubModule) Shutdown() error                                { return m.shutErr }

func noopHandler(*discordgo.Session, *discordgo.InteractionCreate, Responder) error { return nil }

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubModule{name: "music_player"})
	reg.Register(&stubModule{name: "admin"})

	modules := reg.Modules()
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	if modules[0].Name() != "music_player" || modules[1].Name() != "admin" {
		t.Errorf("expected registration order, got %q, %q", modules[0].Name(), modules[1].Name())
	}
}

func TestRegistry_RegisterDuplicateNamePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubModule{name: "music_player"})

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a duplicate module name")
		}
	}()
	reg.Register(&stubModule{name: "music_player"})
}

func TestRegistry_ModulesReturnsSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubModule{name: "module-1"})

	modules := reg.Modules()
	reg.Register(&stubModule{name: "module-2"})

	if len(modules) != 1 {
		t.Errorf("expected snapshot to have 1 module, got %d", len(modules))
	}
}

func TestGlobalRegistry(t *testing.T) {
	ResetGlobalRegistry()
	defer ResetGlobalRegistry()

	Register(&stubModule{name: "global-test"})

	modules := Modules()
	if len(modules) != 1 || modules[0].Name() != "global-test" {
		t.Fatalf("unexpected modules %v", modules)
	}
}

func TestBuildRoutes(t *testing.T) {
	music := &interactiveStubModule{
		stubModule: stubModule{
			name:     "music_player",
			handlers: map[string]InteractionHandler{"play": noopHandler, "queue": noopHandler},
		},
		components:   map[string]InteractionHandler{"queue-next": noopHandler, "search-select": noopHandler},
		autocomplete: map[string]InteractionHandler{"play": noopHandler},
	}
	plain := &stubModule{
		name:     "admin",
		handlers: map[string]InteractionHandler{"status": noopHandler},
	}

	routes, err := BuildRoutes([]Module{music, plain})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(routes.Commands) != 3 {
		t.Errorf("expected 3 command routes, got %d", len(routes.Commands))
	}
	if len(routes.Components) != 2 {
		t.Errorf("expected 2 component routes, got %d", len(routes.Components))
	}
	if _, ok := routes.Autocomplete["play"]; !ok || len(routes.Autocomplete) != 1 {
		t.Errorf("expected only play to autocomplete, got %d routes", len(routes.Autocomplete))
	}
}

func TestBuildRoutes_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		modules []Module
		wantErr string
	}{
		{
			name: "command claimed twice",
			modules: []Module{
				&stubModule{name: "a", handlers: map[string]InteractionHandler{"play": noopHandler}},
				&stubModule{name: "b", handlers: map[string]InteractionHandler{"play": noopHandler}},
			},
			wantErr: `command "play"`,
		},
		{
			name: "component prefix claimed twice",
			modules: []Module{
				&interactiveStubModule{
					stubModule: stubModule{name: "a"},
					components: map[string]InteractionHandler{"queue-next": noopHandler},
				},
				&interactiveStubModule{
					stubModule: stubModule{name: "b"},
					components: map[string]InteractionHandler{"queue-next": noopHandler},
				},
			},
			wantErr: `component "queue-next"`,
		},
		{
			name: "component prefix with separator",
			modules: []Module{
				&interactiveStubModule{
					stubModule: stubModule{name: "a"},
					components: map[string]InteractionHandler{"queue:next": noopHandler},
				},
			},
			wantErr: "invalid component prefix",
		},
		{
			name: "autocomplete claimed twice",
			modules: []Module{
				&interactiveStubModule{
					stubModule:   stubModule{name: "a"},
					autocomplete: map[string]InteractionHandler{"seek": noopHandler},
				},
				&interactiveStubModule{
					stubModule:   stubModule{name: "b"},
					autocomplete: map[string]InteractionHandler{"seek": noopHandler},
				},
			},
			wantErr: `autocomplete "seek"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRoutes(tt.modules)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
