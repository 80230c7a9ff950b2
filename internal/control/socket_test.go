package control

import "testing"

func TestHandleCommand_EmptyLine(t *testing.T) {
	s := &Server{}
	if got := s.handleCommand(""); got != `{"error": "empty command"}` {
		t.Errorf("got %q", got)
	}
}

func TestHandleCommand_UnknownCommand(t *testing.T) {
	s := &Server{}
	if got := s.handleCommand("frobnicate"); got != `{"error": "unknown command: frobnicate"}` {
		t.Errorf("got %q", got)
	}
}

func TestHandleCommand_StartRequiresArg(t *testing.T) {
	s := &Server{}
	if got := s.handleCommand("start"); got != `{"error": "start requires LSP name"}` {
		t.Errorf("got %q", got)
	}
}

func TestHandleCommand_StopRequiresArg(t *testing.T) {
	s := &Server{}
	if got := s.handleCommand("stop"); got != `{"error": "stop requires LSP name"}` {
		t.Errorf("got %q", got)
	}
}

func TestHandleCommand_WarmupRequiresArg(t *testing.T) {
	s := &Server{}
	if got := s.handleCommand("warmup"); got != `{"error": "warmup requires directory path"}` {
		t.Errorf("got %q", got)
	}
}
