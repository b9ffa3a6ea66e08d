package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/cache"
	"budgetplanner/internal/cli"
	"budgetplanner/internal/core"
	"budgetplanner/internal/form"
	"budgetplanner/internal/http"
	"budgetplanner/internal/log"
	"budgetplanner/internal/query"
	"budgetplanner/internal/window"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"add":        runAdd,
	"update":     runUpdate,
	"delete":     runDelete,
	"list":       runList,
	"dashboard":  runDashboard,
	"categories": runCategories,
	"watch":      runWatch,
	"serve":      runServe,
}

// formFlags registers one string flag per form field.
func formFlags(fs *flag.FlagSet) map[string]*string {
	return map[string]*string{
		form.FieldDate:     fs.String(form.FieldDate, "", "date as YYYY-MM-DD (default today)"),
		form.FieldName:     fs.String(form.FieldName, "", "description"),
		form.FieldAmount:   fs.String(form.FieldAmount, "", "amount, dot or comma decimals"),
		form.FieldType:     fs.String(form.FieldType, "", "income or expense (default expense)"),
		form.FieldCategory: fs.String(form.FieldCategory, "", "category"),
		form.FieldNote:     fs.String(form.FieldNote, "", "optional note"),
	}
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fields := formFlags(fs)
	fixCategory := fs.Bool("fix-category", false, "replace the category with the suggested known one")
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	values := url.Values{}
	for name, v := range fields {
		values.Set(name, *v)
	}
	n, err := form.FromValues(values).Parse()
	if err != nil {
		return err
	}

	if n.Category != "" {
		known := form.Categories(a.store.List())
		if s, ok := form.SuggestCategory(n.Category, known); ok && s != n.Category {
			if *fixCategory {
				n.Category = s
			} else {
				fmt.Printf("Category %q looks like %q (use -fix-category to apply)\n", n.Category, s)
			}
		}
	}

	tx, err := a.store.Add(ctx, n)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s  %s  %s\n", tx.ID, tx.Name, core.SignedLabel(tx, a.cfg.CurrencySymbol))
	return nil
}

// popID takes the leading positional ID off args.
func popID(name string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("usage: budgetplanner %s ID [options]", name)
	}
	return args[0], args[1:], nil
}

func runUpdate(ctx context.Context, a *app, args []string) error {
	id, args, err := popID("update", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fields := formFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	values := url.Values{}
	fs.Visit(func(f *flag.Flag) {
		values.Set(f.Name, *fields[f.Name])
	})
	patch, err := form.PatchFromValues(values)
	if errors.Is(err, form.ErrNothingToUpdate) {
		return errors.New("nothing to update: pass at least one field option")
	}
	if err != nil {
		return err
	}

	ok, err := a.store.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	tx, _ := a.store.Get(id)
	fmt.Printf("Updated %s  %s  %s\n", tx.ID, tx.Name, core.SignedLabel(tx, a.cfg.CurrencySymbol))
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	id, _, err := popID("delete", args)
	if err != nil {
		return err
	}
	ok, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

func typeFlag(fs *flag.FlagSet) *string {
	return fs.String("type", core.FilterBoth.String(), "income, expense or both")
}

func runList(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	typ := typeFlag(fs)
	search := fs.String("search", "", "match name or category, case-insensitive")
	from := fs.String("from", "", "first date to include, YYYY-MM-DD")
	to := fs.String("to", "", "last date to include, YYYY-MM-DD")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", a.cfg.PageSize, fmt.Sprintf("rows per page %v", query.PageSizes))
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	filter, err := core.ParseTypeFilter(*typ)
	if err != nil {
		return err
	}
	c := query.Criteria{Type: filter, Search: *search, Start: *from, End: *to}
	fmt.Print(a.render.Table(a.dash.Table(c, *pageSize, *page), c))
	return nil
}

// viewFlags are the dashboard view selectors.
type viewFlags struct {
	rng *string
	typ *string
}

func newViewFlags(fs *flag.FlagSet, a *app) viewFlags {
	return viewFlags{
		rng: fs.String("range", a.cfg.DefaultRange, "chart window: week, month or year"),
		typ: typeFlag(fs),
	}
}

func (v viewFlags) parse() (window.Range, core.TypeFilter, error) {
	sel, err := core.ParseTypeFilter(*v.typ)
	return window.ParseRange(*v.rng), sel, err
}

func runDashboard(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	view := newViewFlags(fs, a)
	if err := fs.Parse(args); err != nil {
		return errReported
	}
	r, sel, err := view.parse()
	if err != nil {
		return err
	}
	fmt.Println(a.render.Dashboard(a.dash.Snapshot(r), sel))
	return nil
}

func runCategories(_ context.Context, a *app, _ []string) error {
	for _, c := range form.Categories(a.store.List()) {
		fmt.Println(c)
	}
	return nil
}

const (
	watchRedraw     = time.Minute
	shutdownTimeout = 10 * time.Second
)

func runWatch(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	view := newViewFlags(fs, a)
	if err := fs.Parse(args); err != nil {
		return errReported
	}
	r, sel, err := view.parse()
	if err != nil {
		return err
	}
	if a.events == nil {
		return errors.New("watch needs amqp_url to be configured")
	}

	ctx, done := cli.GracefulShutdown(a.logger, shutdownTimeout, a.Close)

	memos := cache.NewManager(a.logger)
	memos.Register(a.dash.Memo())
	memos.Start(ctx, watchRedraw)
	defer memos.Stop()

	var mu sync.Mutex
	draw := func() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Print("\033[H\033[2J")
		fmt.Println(a.render.Dashboard(a.dash.Snapshot(r), sel))
	}
	draw()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- a.events.ConsumeEvents(ctx, func(ctx context.Context, msg *amqp.TransactionEventMessage) error {
			a.logger.DebugContext(ctx, "Change event received",
				log.FieldEvent, msg.Kind,
				log.FieldRevision, msg.Revision)
			if err := a.store.Reload(ctx); err != nil {
				return err
			}
			draw()
			return nil
		})
	}()

	ticker := time.NewTicker(watchRedraw)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			draw()
		case err := <-consumeErr:
			if ctx.Err() != nil {
				cli.WaitForShutdown(ctx, done)
				return nil
			}
			a.logger.Error("Event consumption failed", log.FieldError, err)
			fmt.Fprintln(os.Stderr, err)
			return errReported
		case <-done:
			return nil
		}
	}
}

func runServe(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return errReported
	}
	if *addr == "" {
		return errors.New("serve needs http_addr or -addr")
	}

	srv := http.NewServer(http.Config{
		Addr:               *addr,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
		CurrencySymbol:     a.cfg.CurrencySymbol,
		PageSize:           a.cfg.PageSize,
		DefaultRange:       window.ParseRange(a.cfg.DefaultRange),
		TrustedProxies:     a.cfg.TrustedProxies,
		Logger:             a.logger,
	}, a.store, a.dash)

	ctx, done := cli.GracefulShutdown(a.logger, shutdownTimeout, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Server shutdown error", log.FieldError, err)
		}
		a.Close()
	})

	memos := cache.NewManager(a.logger)
	memos.Register(a.dash.Memo())
	memos.Start(ctx, time.Minute)
	defer memos.Stop()

	a.logger.Info("Starting budgetplanner server",
		log.FieldAddr, *addr,
		log.FieldBackend, a.cfg.DataBackend,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		a.logger.Error("Server error", log.FieldError, err, log.FieldAddr, *addr)
		_ = srv.Shutdown(context.Background())
		fmt.Fprintln(os.Stderr, err)
		return errReported
	}

	cli.WaitForShutdown(ctx, done)
	a.logger.Info("Server stopped gracefully")
	return nil
}
