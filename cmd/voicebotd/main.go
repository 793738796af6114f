// Command voicebotd runs the telephony core as a standalone process: it
// binds the SIP and RTP sockets, wires the dialog router, stream table,
// B2BUA bridge and Prometheus metrics, and answers inbound calls against
// a set of fake AI/storage/routing ports until real backends are wired
// in their place.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/internal/config"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/b2bua"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/dialog"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/metrics"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/ports/fake"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/stream"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// defaultDirectory is the transfer directory used when no backing routing
// store is wired in; spec.md treats the directory as a static in-memory
// map, not a database-backed lookup.
func defaultDirectory() map[string]string {
	return map[string]string{
		"operator": "+819000000001",
		"須田":       "+819000000002",
	}
}

func main() {
	cfg := config.Load()
	log.Printf("voicebotd starting: sip=%s:%d rtp=%s:%d metrics=%s", cfg.SipBindIP, cfg.SipPort, cfg.SipBindIP, cfg.RtpPort, cfg.MetricsAddr)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	registry := dialog.NewRegistry()
	bridge := b2bua.NewBridge()
	rtpMap := transport.NewRTPPortMap()

	app := newApp(cfg, collector, registry, bridge, rtpMap,
		fake.NewAI(), fake.NewStorage(50), fake.NewIngest(), fake.NewCallLog(), defaultDirectory())

	router := dialog.NewRouter(registry, bridge, app.handleNewCall)

	var tr *transport.Transport
	streamMgr := stream.New(&transportSenderAdapter{appRef: &tr}, time.Duration(cfg.RtcpInterval)*time.Second)
	app.streamMgr = streamMgr

	var err error
	tr, err = transport.New(transport.Options{
		SipBindAddr: fmt.Sprintf("%s:%d", cfg.SipBindIP, cfg.SipPort),
		RtpBindAddr: fmt.Sprintf("%s:%d", cfg.SipBindIP, cfg.RtpPort),
		Router:      router,
		Registry:    registry,
		RTPMap:      rtpMap,
		Forwarder:   streamMgr,
		OnResponse:  app.handleUacResponse,
		ErrLog:      func(format string, args ...any) { log.Printf(format, args...) },
	})
	if err != nil {
		log.Fatalf("voicebotd: %v", err)
	}
	app.transport = tr
	app.txSender = transactionSender{tr: tr}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tr.Run(ctx)

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(reg)}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("voicebotd: metrics server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Printf("voicebotd shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	cancel()
	streamMgr.Close()
	registry.Close()
}

// transportSenderAdapter defers to a *transport.Transport that is only
// assigned once transport.New returns, which happens after stream.New is
// called: the stream manager's Sender is only ever invoked once traffic
// is flowing, long after main has finished wiring both.
type transportSenderAdapter struct {
	appRef **transport.Transport
}

func (a *transportSenderAdapter) SendTo(payload []byte, dstIP string, dstPort int) error {
	return (*a.appRef).SendTo(payload, dstIP, dstPort)
}
