package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/kopisenja/pos-client/internal/api"
	"github.com/kopisenja/pos-client/internal/session"
	"github.com/kopisenja/pos-client/pkg/cache"
	"github.com/kopisenja/pos-client/pkg/config"
	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage"
	"github.com/kopisenja/pos-client/pkg/storage/memory"
	"github.com/kopisenja/pos-client/pkg/storage/redisstore"
	"github.com/kopisenja/pos-client/pkg/storage/sqlite"
)

const usage = `usage: backoffice <resource> <action> [flags]

resources:
  login    -token <jwt>            store the staff credential
  logout                           clear the stored credential
  whoami                           print the stored identity

  products   list|get|create|update|delete
  categories list|create|update|delete
  users      list|create|update|delete
  orders     list|get|delete
  reports    daily|revenue|products|payments|export
`

// app bundles everything a command handler needs.
type app struct {
	cfg    *config.Config
	logg   *logger.Logger
	client *api.Client
	sess   *session.Session
	cache  *cache.Cache
	out    *json.Encoder
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "backoffice"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "backoffice",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to open storage", err)
		os.Exit(1)
	}
	defer store.Close()

	sess, err := session.New(ctx, store, logg)
	if err != nil {
		logg.Error(ctx, "failed to load session", err)
		os.Exit(1)
	}

	client, err := api.NewClient(api.Params{
		Config: cfg.API,
		Tokens: sess,
		Logger: logg,
		OnUnauthenticated: func() {
			sess.Logout(context.Background())
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to build api client", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	a := &app{
		cfg:    cfg,
		logg:   logg,
		client: client,
		sess:   sess,
		cache:  cache.New(store, logg),
		out:    encoder,
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logg.Error(ctx, "command failed", err)
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		return sqlite.Open(cfg.Storage.Path)
	case config.StorageDriverRedis:
		return redisstore.New(ctx, cfg.Redis)
	default:
		return memory.New(), nil
	}
}

func (a *app) run(ctx context.Context, resource string, args []string) error {
	switch resource {
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.sess.Logout(ctx)
		return nil
	case "whoami":
		return a.whoami()
	case "products":
		return a.products(ctx, args)
	case "categories":
		return a.categories(ctx, args)
	case "users":
		return a.users(ctx, args)
	case "orders":
		return a.orders(ctx, args)
	case "reports":
		return a.reports(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown resource %q", resource)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "bearer token issued by the ordering API")
	name := fs.String("name", "", "display name")
	role := fs.String("role", "admin", "staff role")
	fs.Parse(args)

	if *token == "" {
		return fmt.Errorf("-token is required")
	}
	if err := a.sess.SetAuth(ctx, *token, session.User{Name: *name, Role: *role}); err != nil {
		return err
	}
	if expiry, ok := a.sess.TokenExpiry(); ok {
		a.logg.Info(ctx, "credential stored, expires "+expiry.Format(time.RFC3339))
	}
	return nil
}

func (a *app) whoami() error {
	if !a.sess.LoggedIn() {
		return fmt.Errorf("not logged in")
	}
	return a.out.Encode(a.sess.User())
}

func (a *app) products(ctx context.Context, args []string) error {
	action, rest := splitAction(args)
	switch action {
	case "list":
		fs := flag.NewFlagSet("products list", flag.ExitOnError)
		category := fs.String("category", "", "filter by category id")
		search := fs.String("search", "", "title search")
		fresh := fs.Bool("fresh", false, "bypass the local cache")
		fs.Parse(rest)

		cacheName := "products:" + *category + ":" + *search
		var products []api.Product
		if !*fresh && a.cache.Get(ctx, cacheName, &products) {
			return a.out.Encode(products)
		}
		products, err := a.client.Products.List(ctx, api.ProductListParams{
			CategoryID: *category,
			Search:     *search,
		})
		if err != nil {
			return err
		}
		a.cache.Set(ctx, cacheName, products, a.cfg.Cache.MenuTTL)
		return a.out.Encode(products)

	case "get":
		fs := flag.NewFlagSet("products get", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(rest)
		product, err := a.client.Products.Get(ctx, *id)
		if err != nil {
			return err
		}
		return a.out.Encode(product)

	case "create":
		fs := flag.NewFlagSet("products create", flag.ExitOnError)
		title := fs.String("title", "", "product title")
		price := fs.Int64("price", 0, "price in the smallest currency unit")
		category := fs.String("category", "", "category id")
		image := fs.String("image", "", "image url")
		fs.Parse(rest)
		product, err := a.client.Products.Create(ctx, api.ProductInput{
			Title:      *title,
			Price:      *price,
			CategoryID: *category,
			ImageURL:   *image,
		})
		if err != nil {
			return err
		}
		a.cache.Wipe(ctx)
		return a.out.Encode(product)

	case "update":
		fs := flag.NewFlagSet("products update", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		title := fs.String("title", "", "product title")
		price := fs.Int64("price", 0, "price in the smallest currency unit")
		category := fs.String("category", "", "category id")
		image := fs.String("image", "", "image url")
		fs.Parse(rest)
		product, err := a.client.Products.Update(ctx, *id, api.ProductInput{
			Title:      *title,
			Price:      *price,
			CategoryID: *category,
			ImageURL:   *image,
		})
		if err != nil {
			return err
		}
		a.cache.Wipe(ctx)
		return a.out.Encode(product)

	case "delete":
		fs := flag.NewFlagSet("products delete", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(rest)
		if err := a.client.Products.Delete(ctx, *id); err != nil {
			return err
		}
		a.cache.Wipe(ctx)
		return nil

	default:
		return fmt.Errorf("unknown products action %q", action)
	}
}

func (a *app) categories(ctx context.Context, args []string) error {
	action, rest := splitAction(args)
	switch action {
	case "list":
		fs := flag.NewFlagSet("categories list", flag.ExitOnError)
		fresh := fs.Bool("fresh", false, "bypass the local cache")
		fs.Parse(rest)

		var categories []api.Category
		if !*fresh && a.cache.Get(ctx, "categories", &categories) {
			return a.out.Encode(categories)
		}
		categories, err := a.client.Categories.List(ctx)
		if err != nil {
			return err
		}
		a.cache.Set(ctx, "categories", categories, a.cfg.Cache.MenuTTL)
		return a.out.Encode(categories)

	case "create":
		fs := flag.NewFlagSet("categories create", flag.ExitOnError)
		title := fs.String("title", "", "category title")
		position := fs.Int("position", 0, "display position")
		fs.Parse(rest)
		category, err := a.client.Categories.Create(ctx, api.CategoryInput{
			Title:    *title,
			Position: *position,
		})
		if err != nil {
			return err
		}
		a.cache.Invalidate(ctx, "categories")
		return a.out.Encode(category)

	case "update":
		fs := flag.NewFlagSet("categories update", flag.ExitOnError)
		id := fs.String("id", "", "category id")
		title := fs.String("title", "", "category title")
		position := fs.Int("position", 0, "display position")
		fs.Parse(rest)
		category, err := a.client.Categories.Update(ctx, *id, api.CategoryInput{
			Title:    *title,
			Position: *position,
		})
		if err != nil {
			return err
		}
		a.cache.Invalidate(ctx, "categories")
		return a.out.Encode(category)

	case "delete":
		fs := flag.NewFlagSet("categories delete", flag.ExitOnError)
		id := fs.String("id", "", "category id")
		fs.Parse(rest)
		if err := a.client.Categories.Delete(ctx, *id); err != nil {
			return err
		}
		a.cache.Invalidate(ctx, "categories")
		return nil

	default:
		return fmt.Errorf("unknown categories action %q", action)
	}
}

func (a *app) users(ctx context.Context, args []string) error {
	action, rest := splitAction(args)
	switch action {
	case "list":
		users, err := a.client.Users.List(ctx)
		if err != nil {
			return err
		}
		return a.out.Encode(users)

	case "create", "update":
		fs := flag.NewFlagSet("users "+action, flag.ExitOnError)
		id := fs.String("id", "", "user id (update only)")
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "login email")
		role := fs.String("role", "cashier", "admin, cashier, waiter or kitchen")
		password := fs.String("password", "", "initial password")
		fs.Parse(rest)

		input := api.UserInput{
			Name:     *name,
			Email:    *email,
			Role:     *role,
			Password: *password,
		}
		var user *api.User
		var err error
		if action == "create" {
			user, err = a.client.Users.Create(ctx, input)
		} else {
			user, err = a.client.Users.Update(ctx, *id, input)
		}
		if err != nil {
			return err
		}
		return a.out.Encode(user)

	case "delete":
		fs := flag.NewFlagSet("users delete", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		fs.Parse(rest)
		return a.client.Users.Delete(ctx, *id)

	default:
		return fmt.Errorf("unknown users action %q", action)
	}
}

func (a *app) orders(ctx context.Context, args []string) error {
	action, rest := splitAction(args)
	switch action {
	case "list":
		fs := flag.NewFlagSet("orders list", flag.ExitOnError)
		status := fs.String("status", "", "filter by status")
		from := fs.String("from", "", "start date (2006-01-02)")
		to := fs.String("to", "", "end date (2006-01-02)")
		fresh := fs.Bool("fresh", false, "bypass the local cache")
		fs.Parse(rest)

		params := api.OrderListParams{Status: *status}
		var err error
		if params.From, err = parseDate(*from); err != nil {
			return err
		}
		if params.To, err = parseDate(*to); err != nil {
			return err
		}

		cacheName := "orders:" + *status + ":" + *from + ":" + *to
		var orders []api.Order
		if !*fresh && a.cache.Get(ctx, cacheName, &orders) {
			return a.out.Encode(orders)
		}
		orders, err = a.client.Orders.List(ctx, params)
		if err != nil {
			return err
		}
		a.cache.Set(ctx, cacheName, orders, a.cfg.Cache.OrdersTTL)
		return a.out.Encode(orders)

	case "get":
		fs := flag.NewFlagSet("orders get", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		fs.Parse(rest)
		order, err := a.client.Orders.Get(ctx, *id)
		if err != nil {
			return err
		}
		return a.out.Encode(order)

	case "delete":
		fs := flag.NewFlagSet("orders delete", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		fs.Parse(rest)
		return a.client.Orders.Delete(ctx, *id)

	default:
		return fmt.Errorf("unknown orders action %q", action)
	}
}

func (a *app) reports(ctx context.Context, args []string) error {
	action, rest := splitAction(args)
	fs := flag.NewFlagSet("reports "+action, flag.ExitOnError)
	date := fs.String("date", "", "report date (2006-01-02), defaults to today")
	from := fs.String("from", "", "start date (2006-01-02)")
	to := fs.String("to", "", "end date (2006-01-02)")
	outPath := fs.String("out", "", "export file path")
	fresh := fs.Bool("fresh", false, "bypass the local cache")
	fs.Parse(rest)

	rang, err := parseRange(*from, *to)
	if err != nil {
		return err
	}

	switch action {
	case "daily":
		day := time.Now()
		if *date != "" {
			if day, err = parseDate(*date); err != nil {
				return err
			}
		}
		cacheName := "reports:daily:" + day.Format("2006-01-02")
		var report api.DailyReport
		if !*fresh && a.cache.Get(ctx, cacheName, &report) {
			return a.out.Encode(report)
		}
		fetched, err := a.client.Reports.Daily(ctx, day)
		if err != nil {
			return err
		}
		a.cache.Set(ctx, cacheName, fetched, a.cfg.Cache.ReportsTTL)
		return a.out.Encode(fetched)

	case "revenue":
		points, err := a.client.Reports.Revenue(ctx, rang)
		if err != nil {
			return err
		}
		return a.out.Encode(points)

	case "products":
		sales, err := a.client.Reports.Products(ctx, rang)
		if err != nil {
			return err
		}
		return a.out.Encode(sales)

	case "payments":
		summary, err := a.client.Reports.PaymentMethods(ctx, rang)
		if err != nil {
			return err
		}
		return a.out.Encode(summary)

	case "export":
		if *outPath == "" {
			return fmt.Errorf("-out is required")
		}
		raw, err := a.client.Reports.Export(ctx, rang)
		if err != nil {
			return err
		}
		return os.WriteFile(*outPath, raw, 0o644)

	default:
		return fmt.Errorf("unknown reports action %q", action)
	}
}

func splitAction(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}

func parseRange(from, to string) (api.ReportRange, error) {
	var rang api.ReportRange
	var err error
	if rang.From, err = parseDate(from); err != nil {
		return rang, err
	}
	if rang.To, err = parseDate(to); err != nil {
		return rang, err
	}
	return rang, nil
}
