package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/estoquepro/estoque/internal/auth"
	"github.com/estoquepro/estoque/internal/config"
	"github.com/estoquepro/estoque/internal/db"
	"github.com/estoquepro/estoque/internal/exchange"
	"github.com/estoquepro/estoque/internal/imaging"
	"github.com/estoquepro/estoque/internal/inventory"
	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/normalize"
	"github.com/estoquepro/estoque/internal/notify"
	"github.com/estoquepro/estoque/internal/prefs"
	"github.com/estoquepro/estoque/internal/storage"
)

const usage = `Usage: estoque <command> [flags]

Commands:
  list      list items (search, group and sort filters)
  add       add a new item
  edit      edit an existing item
  adjust    quick-adjust an item's quantity
  rm        delete an item
  groups    list, rename or delete groups
  history   show the movement ledger
  export    export the catalog as CSV
  import    replace the catalog from a CSV file
  backup    write a JSON backup
  restore   replace all state from a JSON backup
  pin       set or clear the PIN gate
  notify    toggle or run the low-stock check

Environment: ESTOQUE_DB (database path), ESTOQUE_LOG (log file),
ESTOQUE_NOTIFY_COOLDOWN (e.g. 12h). A .env file is honored.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := config.Load()
	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	switch os.Args[1] {
	case "list":
		cmdList(cfg, os.Args[2:])
	case "add":
		cmdAdd(cfg, os.Args[2:])
	case "edit":
		cmdEdit(cfg, os.Args[2:])
	case "adjust":
		cmdAdjust(cfg, os.Args[2:])
	case "rm":
		cmdRemove(cfg, os.Args[2:])
	case "groups":
		cmdGroups(cfg, os.Args[2:])
	case "history":
		cmdHistory(cfg, os.Args[2:])
	case "export":
		cmdExport(cfg, os.Args[2:])
	case "import":
		cmdImport(cfg, os.Args[2:])
	case "backup":
		cmdBackup(cfg, os.Args[2:])
	case "restore":
		cmdRestore(cfg, os.Args[2:])
	case "pin":
		cmdPIN(cfg, os.Args[2:])
	case "notify":
		cmdNotify(cfg, os.Args[2:])
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR
// goes to stderr. If logPath is non-empty, all levels are also written to
// that file. Returns a cleanup function that closes the log file.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+
// to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{stdout: lr.stdout.WithAttrs(attrs), stderr: lr.stderr.WithAttrs(attrs)}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{stdout: lr.stdout.WithGroup(name), stderr: lr.stderr.WithGroup(name)}
}

// openStore opens the database and hydrates the inventory store.
func openStore(cfg *config.Config) (*inventory.Store, storage.KV, *sql.DB) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		fatal("failed to open database", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		fatal("failed to migrate database", err)
	}

	kv := storage.NewSQLite(database)
	return inventory.Open(context.Background(), kv), kv, database
}

// requirePIN enforces the PIN gate on mutating commands. With no PIN
// configured the gate is open.
func requirePIN(kv storage.KV, pin string) {
	ok, err := auth.VerifyPIN(context.Background(), kv, pin)
	if err != nil {
		fatal("failed to verify PIN", err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Wrong or missing PIN (use -pin).")
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func cmdList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "search text")
	group := fs.String("group", "", "filter by group")
	sortMode := fs.String("sort", "", "sort order: low, az or recent")
	attention := fs.Bool("attention", false, "only low or out-of-stock items")
	remember := fs.Bool("remember", false, "persist these display preferences")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	ctx := context.Background()

	p := prefs.Load(ctx, kv)
	query := inventory.Query{
		Search:        *search,
		Group:         *group,
		OnlyAttention: *attention || p.OnlyAttention,
		Sort:          p.Sort,
	}
	if *group == "" {
		query.Group = p.Group
	}
	if *sortMode != "" {
		query.Sort = inventory.SortMode(*sortMode)
	}

	items := store.Filter(query)
	if len(items) == 0 {
		fmt.Println("No items.")
	}
	for _, item := range items {
		marker := " "
		switch item.Level() {
		case model.StockZero:
			marker = "!"
		case model.StockLow:
			marker = "~"
		}
		price := "no price"
		if item.Price != nil {
			price = strconv.FormatFloat(*item.Price, 'f', 2, 64)
		}
		fmt.Printf("%s %4d  %-40s qty %-4d (low ≤ %d)  %s\n",
			marker, item.ID, item.Title(), item.Quantity, item.LowThreshold, price)
	}

	if *remember {
		p.Sort = query.Sort
		p.OnlyAttention = *attention
		p.Group = *group
		if err := prefs.Save(ctx, kv, p); err != nil {
			fatal("failed to save preferences", err)
		}
	}
}

// itemFlags registers the draft field flags shared by add and edit.
func itemFlags(fs *flag.FlagSet) (name, group, modelName, desc, location, price, photoPath *string, qty, low *int) {
	name = fs.String("name", "", "item name (required)")
	group = fs.String("group", "", "group label")
	modelName = fs.String("model", "", "model")
	desc = fs.String("desc", "", "description")
	location = fs.String("location", "", "storage location")
	price = fs.String("price", "", "price (empty for no price)")
	photoPath = fs.String("photo", "", "path to a photo file")
	qty = fs.Int("qty", 0, "quantity")
	low = fs.Int("low", model.DefaultLowThreshold, "low-stock threshold")
	return
}

func buildDraft(name, group, modelName, desc, location, price, photoPath string, qty, low int) inventory.Draft {
	draft := inventory.Draft{
		Name: name, Group: group, Model: modelName,
		Description: desc, Location: location,
		Quantity: qty, LowThreshold: low,
	}

	parsed, err := normalize.ParseOptionalMoney(price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	draft.Price = parsed

	if photoPath != "" {
		f, err := os.Open(photoPath)
		if err != nil {
			fatal("failed to open photo", err)
		}
		defer f.Close()
		payload, err := imaging.EncodePhoto(f)
		if err != nil {
			fatal("failed to process photo", err)
		}
		draft.Photo = payload
	}
	return draft
}

func cmdAdd(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name, group, modelName, desc, location, price, photoPath, qty, low := itemFlags(fs)
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	requirePIN(kv, *pin)

	draft := buildDraft(*name, *group, *modelName, *desc, *location, *price, *photoPath, *qty, *low)
	item, err := store.Create(context.Background(), draft)
	if err != nil {
		fatal("failed to add item", err)
	}
	fmt.Printf("Added %d: %s\n", item.ID, item.Title())
}

func cmdEdit(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.Int64("id", 0, "item id (required)")
	name, group, modelName, desc, location, price, photoPath, qty, low := itemFlags(fs)
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	requirePIN(kv, *pin)
	ctx := context.Background()

	current, err := store.Item(*id)
	if err != nil {
		fatal("item not found", err)
	}

	// Start from the current item; only explicitly set flags override.
	draft := inventory.Draft{
		Name: current.Name, Group: current.Group, Model: current.Model,
		Description: current.Description, Location: current.Location,
		Photo: current.Photo, Price: current.Price,
		Quantity: current.Quantity, LowThreshold: current.LowThreshold,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			draft.Name = *name
		case "group":
			draft.Group = *group
		case "model":
			draft.Model = *modelName
		case "desc":
			draft.Description = *desc
		case "location":
			draft.Location = *location
		case "qty":
			draft.Quantity = *qty
		case "low":
			draft.LowThreshold = *low
		case "price":
			parsed, err := normalize.ParseOptionalMoney(*price)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			draft.Price = parsed
		case "photo":
			payload := ""
			if *photoPath != "" {
				f, err := os.Open(*photoPath)
				if err != nil {
					fatal("failed to open photo", err)
				}
				defer f.Close()
				payload, err = imaging.EncodePhoto(f)
				if err != nil {
					fatal("failed to process photo", err)
				}
			}
			draft.Photo = payload
		}
	})

	item, err := store.Update(ctx, *id, draft)
	if err != nil {
		fatal("failed to edit item", err)
	}
	fmt.Printf("Updated %d: %s\n", item.ID, item.Title())
}

func cmdAdjust(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("adjust", flag.ExitOnError)
	id := fs.Int64("id", 0, "item id (required)")
	delta := fs.Int("delta", 0, "signed quantity change, e.g. -1 or 5")
	note := fs.String("note", "", "movement note, e.g. sale or restock")
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	requirePIN(kv, *pin)

	item, err := store.AdjustQuantity(context.Background(), *id, *delta, *note)
	if err != nil {
		fatal("failed to adjust quantity", err)
	}
	fmt.Printf("%s now at %d\n", item.Title(), item.Quantity)
}

func cmdRemove(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.Int64("id", 0, "item id (required)")
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	requirePIN(kv, *pin)

	if err := store.Delete(context.Background(), *id); err != nil {
		fatal("failed to delete item", err)
	}
	fmt.Printf("Deleted item %d\n", *id)
}

func cmdGroups(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	rename := fs.String("rename", "", "rename a group: -rename old -to new")
	to := fs.String("to", "", "new name for -rename")
	remove := fs.String("rm", "", "delete a group (items move to the default group)")
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	ctx := context.Background()

	switch {
	case *rename != "":
		requirePIN(kv, *pin)
		if err := store.RenameGroup(ctx, *rename, *to); err != nil {
			fatal("failed to rename group", err)
		}
		fmt.Printf("Renamed %q to %q\n", *rename, *to)
	case *remove != "":
		requirePIN(kv, *pin)
		if err := store.DeleteGroup(ctx, *remove); err != nil {
			fatal("failed to delete group", err)
		}
		fmt.Printf("Deleted group %q\n", *remove)
	default:
		for _, g := range store.Groups() {
			count := 0
			for _, item := range store.Items() {
				if item.Group == g {
					count++
				}
			}
			fmt.Printf("%-30s %d item(s)\n", g, count)
		}
	}
}

func cmdHistory(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	id := fs.Int64("id", 0, "show only one item's movements")
	fs.Parse(args)

	store, _, database := openStore(cfg)
	defer database.Close()

	movements := store.Movements()
	if *id != 0 {
		movements = store.History(*id)
	}
	if len(movements) == 0 {
		fmt.Println("No movements.")
		return
	}
	for _, m := range movements {
		fmt.Printf("%s  item %-5d %+4d  %s\n", m.Timestamp, m.ItemID, m.Delta, m.Note)
	}
}

func cmdExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "estoque.csv", "output CSV path")
	fs.Parse(args)

	store, _, database := openStore(cfg)
	defer database.Close()

	data, err := exchange.ExportCSV(store.Items())
	if err != nil {
		fatal("failed to export CSV", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fatal("failed to write CSV file", err)
	}
	fmt.Printf("Exported %d item(s) to %s\n", len(store.Items()), *out)
}

func cmdImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "input CSV path (required)")
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	requirePIN(kv, *pin)

	data, err := os.ReadFile(*in)
	if err != nil {
		fatal("failed to read CSV file", err)
	}
	count, err := exchange.ImportCSV(context.Background(), store, data)
	if err != nil {
		fatal("import failed, nothing changed", err)
	}
	fmt.Printf("Imported %d item(s), previous catalog replaced\n", count)
}

func cmdBackup(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	out := fs.String("out", "estoque-backup.json", "output JSON path")
	fs.Parse(args)

	store, _, database := openStore(cfg)
	defer database.Close()

	data, err := exchange.ExportJSON(store)
	if err != nil {
		fatal("failed to build backup", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fatal("failed to write backup file", err)
	}
	fmt.Printf("Backup written to %s\n", *out)
}

func cmdRestore(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	in := fs.String("in", "", "input JSON path (required)")
	pin := fs.String("pin", "", "PIN when a gate is configured")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	requirePIN(kv, *pin)

	data, err := os.ReadFile(*in)
	if err != nil {
		fatal("failed to read backup file", err)
	}
	count, err := exchange.RestoreJSON(context.Background(), store, data)
	if err != nil {
		fatal("restore failed, nothing changed", err)
	}
	fmt.Printf("Restored %d item(s), previous state replaced\n", count)
}

func cmdPIN(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("pin", flag.ExitOnError)
	set := fs.String("set", "", "configure a new PIN")
	clear := fs.Bool("clear", false, "remove the PIN gate")
	pin := fs.String("pin", "", "current PIN when a gate is configured")
	fs.Parse(args)

	_, kv, database := openStore(cfg)
	defer database.Close()
	ctx := context.Background()

	switch {
	case *set != "":
		requirePIN(kv, *pin)
		if err := auth.SetPIN(ctx, kv, *set); err != nil {
			fatal("failed to set PIN", err)
		}
		fmt.Println("PIN configured.")
	case *clear:
		requirePIN(kv, *pin)
		if err := auth.ClearPIN(ctx, kv); err != nil {
			fatal("failed to clear PIN", err)
		}
		fmt.Println("PIN removed.")
	default:
		enabled, err := auth.Enabled(ctx, kv)
		if err != nil {
			fatal("failed to read PIN state", err)
		}
		if enabled {
			fmt.Println("PIN gate is on.")
		} else {
			fmt.Println("PIN gate is off.")
		}
	}
}

// stderrSender prints notifications; a real platform layer would hook the
// system notification service here.
type stderrSender struct{}

func (stderrSender) Send(title, body string) error {
	_, err := fmt.Fprintf(os.Stderr, "[%s] %s\n", title, body)
	return err
}

func cmdNotify(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	on := fs.Bool("on", false, "enable low-stock notifications")
	off := fs.Bool("off", false, "disable low-stock notifications")
	fs.Parse(args)

	store, kv, database := openStore(cfg)
	defer database.Close()
	ctx := context.Background()

	notifier := notify.New(kv, stderrSender{}).WithCooldown(cfg.NotifyCooldown)

	switch {
	case *on:
		if err := notifier.SetEnabled(ctx, true); err != nil {
			fatal("failed to enable notifications", err)
		}
		fmt.Println("Low-stock notifications on.")
	case *off:
		if err := notifier.SetEnabled(ctx, false); err != nil {
			fatal("failed to disable notifications", err)
		}
		fmt.Println("Low-stock notifications off.")
	default:
		sent, err := notifier.CheckLowStock(ctx, store.Items())
		if err != nil {
			fatal("low-stock check failed", err)
		}
		if !sent {
			fmt.Println("Nothing to report (or still in cooldown).")
		}
	}
}
