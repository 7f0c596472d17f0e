package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basedrum/basedrum-api/internal/audio"
	"github.com/basedrum/basedrum-api/internal/identity"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/pattern"
	"github.com/basedrum/basedrum-api/internal/sequencer"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("f", "", "Play a saved song document (JSON file).")
	wallet := flag.String("wallet", "", "Generate from a wallet address via IDENTITY_SERVICE_URL.")
	snapshot := flag.String("snapshot", "", "Generate from a local identity snapshot (JSON file).")
	threshold := flag.Bool("threshold", false, "Use the threshold generator instead of the stochastic one.")
	swing := flag.Float64("swing", 0, "Swing amount in [0, 0.5].")
	title := flag.String("title", "basedrum session", "Title for generated patterns.")
	quiet := flag.Bool("q", false, "Suppress the step display.")
	flag.Parse()

	_ = godotenv.Load()

	doc, err := resolveDocument(*file, *wallet, *snapshot, *threshold, *title)
	if err != nil {
		fmt.Fprintf(os.Stderr, "basedrum: %v\n", err)
		os.Exit(1)
	}

	voices := sequencer.NewVoiceBank()
	engine, err := audio.NewEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "basedrum: audio unavailable, running silent: %v\n", err)
	} else {
		bindVoices(engine, voices, doc)
	}

	callbacks := sequencer.Callbacks{}
	if !*quiet {
		callbacks.OnStepChange = func(step int) {
			fmt.Printf("\rstep %2d/16", step+1)
		}
	}

	seq := sequencer.New(voices, sequencer.NewTrackControl(), song.DefaultVolumeMap(), callbacks)
	seq.SetDocument(doc)
	seq.SetSwing(*swing)

	if err := seq.Play(); err != nil {
		fmt.Fprintf(os.Stderr, "basedrum: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("playing %q at %d bpm (%d bars), ctrl-c to stop\n",
		doc.Metadata.Title, doc.Metadata.BPM, doc.Metadata.Bars)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	seq.Stop()
	fmt.Println("\nstopped")
}

func resolveDocument(file, wallet, snapshot string, threshold bool, title string) (*song.Document, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return song.Parse(raw)
	}

	vector, err := resolveIdentity(wallet, snapshot)
	if err != nil {
		return nil, err
	}

	if threshold {
		return pattern.BuildThresholdDocument(title, vector), nil
	}
	c := music.ExtractConstraints(vector)
	tracks := pattern.NewGenerator().GenerateWithConstraints(vector, c)
	return pattern.BuildDocument(title, tracks, c), nil
}

func resolveIdentity(wallet, snapshot string) (*identity.Vector, error) {
	if snapshot != "" {
		raw, err := os.ReadFile(snapshot)
		if err != nil {
			return nil, err
		}
		return identity.ParseSnapshot(raw)
	}
	if wallet == "" {
		return nil, nil
	}
	baseURL := os.Getenv("IDENTITY_SERVICE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("IDENTITY_SERVICE_URL not set, cannot fetch wallet %s", wallet)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return identity.NewClient(baseURL).Fetch(ctx, wallet), nil
}

func bindVoices(engine *audio.Engine, voices *sequencer.VoiceBank, doc *song.Document) {
	presets := map[string]string{}
	for role, name := range pattern.InstrumentFor {
		presets[name] = pattern.VoicePresetFor[role]
	}
	for name := range doc.Tracks {
		preset := presets[name]
		voices.Bind(name, engine.NewVoice(preset))
	}
}
