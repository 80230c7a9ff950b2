package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/amarbel-llc/go-lib-mcp/jsonrpc"
	"github.com/amarbel-llc/go-lib-mcp/transport"
	"github.com/amarbel-llc/mill/internal/config"
	"github.com/amarbel-llc/mill/internal/config/filetype"
	"github.com/amarbel-llc/mill/internal/deadcode"
	"github.com/amarbel-llc/mill/internal/dispatch"
	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/lspprovider"
	"github.com/amarbel-llc/mill/internal/plugin"
	"github.com/amarbel-llc/mill/internal/plugin/cplugin"
	"github.com/amarbel-llc/mill/internal/plugin/csharpplugin"
	"github.com/amarbel-llc/mill/internal/plugin/goplugin"
	"github.com/amarbel-llc/mill/internal/plugin/javaplugin"
	"github.com/amarbel-llc/mill/internal/plugin/pyplugin"
	"github.com/amarbel-llc/mill/internal/plugin/rustplugin"
	"github.com/amarbel-llc/mill/internal/plugin/swiftplugin"
	"github.com/amarbel-llc/mill/internal/plugin/tsplugin"
	refexecutor "github.com/amarbel-llc/mill/internal/refactor/executor"
	"github.com/amarbel-llc/mill/internal/refactor/lock"
	"github.com/amarbel-llc/mill/internal/refactor/planner"
	"github.com/amarbel-llc/mill/internal/server"
	"github.com/amarbel-llc/mill/internal/subprocess"
)

// newPluginRegistry registers every language plugin this build ships, first
// registration wins per extension.
func newPluginRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	for _, p := range []plugin.LanguagePlugin{
		goplugin.New(),
		tsplugin.New(),
		pyplugin.New(),
		rustplugin.New(),
		javaplugin.New(),
		cplugin.New(),
		csharpplugin.New(),
		swiftplugin.New(),
	} {
		r.Register(p)
	}
	return r
}

type Server struct {
	cfg        *config.Config
	transport  transport.Transport
	handler    *Handler
	pool       *subprocess.Pool
	router     *server.Router
	bridge     *Bridge
	docMgr     *DocumentManager
	diagStore  *DiagnosticsStore
	tools      *ToolRegistry
	resources  *ResourceRegistry
	prompts    *PromptRegistry
	opQueue    *lock.Queue
	done       chan struct{}
	wg         sync.WaitGroup
}

func New(cfg *config.Config, t transport.Transport) (*Server, error) {
	filetypes, err := filetype.LoadMerged()
	if err != nil {
		return nil, fmt.Errorf("loading filetype configs: %w", err)
	}

	router, err := server.NewRouter(filetypes)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		transport: t,
		router:    router,
		done:      make(chan struct{}),
	}

	executor := subprocess.NewNixExecutor()
	s.pool = subprocess.NewPool(executor, func(lspName string) jsonrpc.Handler {
		return s.lspNotificationHandler(lspName)
	})

	for _, l := range cfg.LSPs {
		// Convert config.CapabilityOverride to subprocess.CapabilityOverride
		var capOverrides *subprocess.CapabilityOverride
		if l.Capabilities != nil {
			capOverrides = &subprocess.CapabilityOverride{
				Disable: l.Capabilities.Disable,
				Enable:  l.Capabilities.Enable,
			}
		}
		s.pool.Register(l.Name, l.Flake, l.Binary, l.Args, l.Env, l.InitOptions, l.Settings, l.SettingsWireKey(), capOverrides, l.ShouldWaitForReady(), l.ReadyTimeoutDuration(), l.ActivityTimeoutDuration())
	}

	s.bridge = NewBridge(s.pool, s.router)
	s.docMgr = NewDocumentManager(s.pool, s.router, s.bridge)
	s.bridge.SetDocumentManager(s.docMgr)
	s.diagStore = NewDiagnosticsStore()

	registry := newPluginRegistry()
	provider := lspprovider.NewAdapter(s.pool, s.router)
	pl := planner.New(registry, provider)
	ex := refexecutor.New(lock.NewManager())
	an := deadcode.New(provider, registry)
	s.opQueue = lock.NewQueue(64)
	d := dispatch.New(s.bridge, pl, ex, an, registry, s.opQueue)
	s.tools = NewToolRegistry(d)

	s.resources = NewResourceRegistry(s.pool, s.bridge, cfg, s.diagStore)
	s.prompts = NewPromptRegistry()
	s.handler = NewHandler(s)
	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			s.gracefulShutdown()
			return ctx.Err()
		case <-s.done:
			s.gracefulShutdown()
			return nil
		default:
		}

		msg, err := s.transport.Read()
		if err != nil {
			// EOF signals graceful shutdown from client
			if err == io.EOF {
				s.gracefulShutdown()
				return nil
			}
			s.gracefulShutdown()
			return fmt.Errorf("reading message: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleMessage(ctx, msg)
		}()
	}
}

func (s *Server) handleMessage(ctx context.Context, msg *jsonrpc.Message) {
	resp, err := s.handler.Handle(ctx, msg)
	if err != nil {
		if msg.IsRequest() {
			errResp, _ := jsonrpc.NewErrorResponse(*msg.ID, jsonrpc.InternalError, err.Error(), nil)
			s.transport.Write(errResp)
		}
		return
	}

	if resp != nil {
		s.transport.Write(resp)
	}
}

func (s *Server) gracefulShutdown() {
	// Wait for all in-flight requests to complete
	s.wg.Wait()
	s.docMgr.CloseAll()
	s.pool.StopAll()
	s.opQueue.Close()
	s.transport.Close()
}

func (s *Server) Close() {
	close(s.done)
}

func (s *Server) DocumentManager() *DocumentManager {
	return s.docMgr
}

func (s *Server) lspNotificationHandler(lspName string) jsonrpc.Handler {
	return func(ctx context.Context, msg *jsonrpc.Message) (*jsonrpc.Message, error) {
		// Intercept window/workDoneProgress/create requests
		if msg.IsRequest() && msg.Method == lsp.MethodWindowWorkDoneProgressCreate {
			if inst, ok := s.pool.Get(lspName); ok && inst.Progress != nil {
				var params lsp.WorkDoneProgressCreateParams
				if err := json.Unmarshal(msg.Params, &params); err == nil {
					inst.Progress.HandleCreate(params.Token)
				}
			}
			return jsonrpc.NewResponse(*msg.ID, nil)
		}

		// Intercept $/progress notifications — update tracker, log to stderr
		if msg.IsNotification() && msg.Method == lsp.MethodProgress {
			if inst, ok := s.pool.Get(lspName); ok && inst.Progress != nil {
				var params lsp.ProgressParams
				if err := json.Unmarshal(msg.Params, &params); err == nil {
					inst.Progress.HandleProgress(params.Token, params.Value)

					active := inst.Progress.ActiveProgress()
					for _, tok := range active {
						logMsg := tok.Title
						if tok.Message != "" {
							logMsg += ": " + tok.Message
						}
						if tok.Pct != nil {
							logMsg += fmt.Sprintf(" (%d%%)", *tok.Pct)
						}
						fmt.Fprintf(os.Stderr, "[mill] %s: %s\n", lspName, logMsg)
					}
				}
			}
			return nil, nil
		}

		if msg.Method == "textDocument/publishDiagnostics" && msg.Params != nil {
			var params lsp.PublishDiagnosticsParams
			if err := json.Unmarshal(msg.Params, &params); err != nil {
				return nil, nil
			}

			s.diagStore.Update(params)

			resourceURI := DiagnosticsResourceURI(params.URI)
			notification, err := jsonrpc.NewNotification("notifications/resources/updated", map[string]string{
				"uri": resourceURI,
			})
			if err == nil {
				s.transport.Write(notification)
			}
		}

		return nil, nil
	}
}
