package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/playhub-league/internal/config"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// Profiling holds the optional pprof listener and the pyroscope agent.
type Profiling struct {
	logger *logging.Logger
	debug  *http.Server
	agent  *pyroscope.Profiler
}

// StartProfiling starts whichever profilers cfg enables. Stop is safe to call
// on the result even when both are disabled.
func StartProfiling(cfg config.Config, logger *logging.Logger) (*Profiling, error) {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Profiling{logger: logger.Named("profiling")}

	if cfg.PyroscopeEnabled {
		agent, err := pyroscope.Start(pyroscopeConfig(cfg))
		if err != nil {
			return nil, err
		}
		p.agent = agent
		p.logger.Info("pyroscope agent started", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	}

	if cfg.PprofEnabled {
		ln, err := net.Listen("tcp", cfg.PprofAddr)
		if err != nil {
			_ = p.Stop(context.Background())
			return nil, err
		}
		p.debug = &http.Server{Handler: debugMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := p.debug.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				p.logger.Error("pprof listener failed", "error", err)
			}
		}()
		p.logger.Info("pprof listening", "addr", ln.Addr().String())
	}

	return p, nil
}

// Stop shuts the pprof listener down and flushes the pyroscope agent.
func (p *Profiling) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.debug != nil {
		errs = append(errs, p.debug.Shutdown(ctx))
	}
	if p.agent != nil {
		errs = append(errs, p.agent.Stop())
	}
	return errors.Join(errs...)
}

func debugMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockDuration,
}

func pyroscopeConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"store":   cfg.StoreDriver,
		},
		ProfileTypes: profileTypes,
	}
}
