package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"copyflow-be/internal/bootstrap"
	"copyflow-be/internal/config"
	"copyflow-be/internal/dto"
	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/repository/memory"
	"copyflow-be/internal/repository/sqlite"
	"copyflow-be/internal/service"
	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/events"
	pktNats "copyflow-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

const cliLogFile = "logs/copyflow-cli.log"

type services struct {
	generation service.IGenerationService
	comparison service.IComparisonService
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	if mode := c.String("gateway"); mode != "" {
		cfg.Gateway.Mode = strings.ToLower(mode)
	}
	return cfg
}

func newServices(c *cli.Context) (*services, error) {
	cfg := loadConfig(c)
	gw, err := bootstrap.NewGateway(cfg, logger.NewIsolatedLogger(cliLogFile))
	if err != nil {
		return nil, err
	}
	extractor := ingestion.NewExtractor(ingestion.WithMaxSize(int64(cfg.Storage.MaxUploadSize)))
	return &services{
		generation: service.NewGenerationService(extractor, gw),
		comparison: service.NewComparisonService(extractor, gw, nil),
	}, nil
}

func openStore(c *cli.Context) (*sqlite.SlotStore, error) {
	path := c.String("db")
	if path == "" {
		path = sqlite.DefaultDBName
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open slot database: %w", err)
	}
	return store, nil
}

func readUpload(path string) (dto.UploadFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.UploadFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return dto.UploadFile{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func workflowArg(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, cli.Exit(fmt.Sprintf("invalid workflow id %q", raw), 2)
	}
	return id, nil
}

func fallbackNotice(fallback bool) {
	if fallback {
		color.Yellow("⚠ backend unavailable, result produced by the fallback generator")
	}
}

func scoreColor(score int) func(format string, a ...interface{}) string {
	switch {
	case score >= 80:
		return color.GreenString
	case score >= 50:
		return color.YellowString
	default:
		return color.RedString
	}
}

func ExtractAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: copyflow extract <file>", 2)
	}
	svc, err := newServices(c)
	if err != nil {
		return err
	}
	file, err := readUpload(c.Args().First())
	if err != nil {
		return err
	}

	res, err := svc.generation.Extract(c.Context, file, c.String("mode"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(res.Content)
	return nil
}

func CompareAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: copyflow compare <file1> <file2>", 2)
	}
	svc, err := newServices(c)
	if err != nil {
		return err
	}
	file1, err := readUpload(c.Args().Get(0))
	if err != nil {
		return err
	}
	file2, err := readUpload(c.Args().Get(1))
	if err != nil {
		return err
	}

	if kind := c.String("type"); kind != "" {
		res, err := svc.comparison.CompareDocuments(c.Context, file1, file2, &dto.CompareTextRequest{ComparisonType: kind})
		if err != nil {
			return err
		}
		fallbackNotice(res.Fallback)
		keys := make([]string, 0, len(res.Result))
		for k := range res.Result {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-20s %v\n", color.CyanString(k), res.Result[k])
		}
		return nil
	}

	res, err := svc.comparison.CompareUploads(c.Context, file1, file2)
	if err != nil {
		return err
	}
	fallbackNotice(res.Fallback)
	color.Cyan("%s vs %s", file1.Name, file2.Name)
	for _, row := range []struct {
		label string
		score int
	}{
		{"Similarity", res.Similarity},
		{"Content match", res.ContentMatch},
		{"Structure", res.Structure},
		{"Compatibility", res.Compatibility},
	} {
		fmt.Printf("%-15s %s\n", row.label, scoreColor(row.score)("%d%%", row.score))
	}
	return nil
}

func GenerateCopyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: copyflow generate-copy <briefing>", 2)
	}
	svc, err := newServices(c)
	if err != nil {
		return err
	}
	file, err := readUpload(c.Args().First())
	if err != nil {
		return err
	}

	res, err := svc.generation.GenerateCopyFromUpload(c.Context, file, c.StringSlice("keyword"))
	if err != nil {
		return err
	}
	fallbackNotice(res.Fallback)
	fmt.Println(res.Output)

	raw := c.String("workflow")
	if raw == "" {
		return nil
	}
	workflowId, err := workflowArg(raw)
	if err != nil {
		return err
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	slots := service.NewSlotService(store, memory.NewSlotStore(0))
	err = slots.Apply(c.Context, workflowId, []workflow.SlotWrite{
		{Slot: workflow.SlotSavedCopy, Scope: workflow.ScopeDurable, Value: res.Output},
		{Slot: workflow.SlotSavedCopyDate, Scope: workflow.ScopeDurable, Value: time.Now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return err
	}
	color.Green("✅ Saved as savedCopy of workflow %s", workflowId)
	return nil
}

func SlotsListAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if c.NArg() == 0 {
		ids, err := store.Workflows(c.Context)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No workflows found")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		fmt.Printf("\nTotal: %d workflows\n", len(ids))
		return nil
	}

	workflowId, err := workflowArg(c.Args().First())
	if err != nil {
		return err
	}
	slots, err := store.List(c.Context, workflowId)
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %-10s %-20s %s\n", "Name", "Scope", "Updated", "Value")
	fmt.Println(strings.Repeat("-", 90))
	for _, s := range slots {
		updated := s.CreatedAt
		if s.UpdatedAt != nil {
			updated = *s.UpdatedAt
		}
		fmt.Printf("%-24s %-10s %-20s %s\n", s.Name, s.Scope, updated.Format("2006-01-02 15:04:05"), preview(s.Value, 40))
	}
	return nil
}

func SlotsGetAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: copyflow slots get <workflow> <name>", 2)
	}
	workflowId, err := workflowArg(c.Args().Get(0))
	if err != nil {
		return err
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	slot, err := store.Get(c.Context, workflowId, c.Args().Get(1))
	if err != nil {
		return err
	}
	if slot == nil {
		return cli.Exit("slot not found", 1)
	}
	fmt.Println(slot.Value)
	return nil
}

func SlotsClearAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: copyflow slots clear <workflow> [name...]", 2)
	}
	workflowId, err := workflowArg(c.Args().First())
	if err != nil {
		return err
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	names := c.Args().Tail()
	if len(names) == 0 {
		slots, err := store.List(c.Context, workflowId)
		if err != nil {
			return err
		}
		for _, s := range slots {
			names = append(names, s.Name)
		}
	}
	if err := store.Delete(c.Context, workflowId, names...); err != nil {
		return err
	}
	color.Green("Cleared %d slots", len(names))
	return nil
}

func WatchAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	sub, err := pktNats.NewSubscriber(c.String("nats"))
	if err != nil {
		return err
	}
	defer sub.Close()

	only := c.String("workflow")
	err = sub.Subscribe(ctx, pktNats.Subject(">"), c.String("durable"), func(_ context.Context, event events.Event) error {
		data := event.Payload()
		if only != "" && data["workflow_id"] != only {
			return nil
		}
		fmt.Printf("%s %s %s %s\n",
			event.Timestamp().Local().Format("15:04:05"),
			color.CyanString("%-10v", data["page"]),
			color.YellowString("%-22s", event.EventType()),
			data["stage"],
		)
		return nil
	})
	if err != nil {
		return err
	}

	color.Green("Watching stage events, Ctrl-C to stop")
	<-ctx.Done()
	return nil
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
