package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	"github.com/example/storefront-session/internal/account"
	"github.com/example/storefront-session/internal/aichat"
	"github.com/example/storefront-session/internal/apiclient"
	"github.com/example/storefront-session/internal/cart"
	"github.com/example/storefront-session/internal/catalog"
	"github.com/example/storefront-session/internal/config"
	"github.com/example/storefront-session/internal/payment"
	"github.com/example/storefront-session/internal/session"
	"github.com/example/storefront-session/internal/signal"
	"github.com/example/storefront-session/internal/storage"
)

const usage = `Usage: storefront [-config path] COMMAND [args]

Commands:
  status                        show session and cart state
  login EMAIL PASSWORD          sign in
  logout                        sign out (also empties the cart)
  register NAME EMAIL PASSWORD  create an account and sign in
  add PRODUCT_ID [QTY]          add a catalog product to the cart
  qty PRODUCT_ID QTY            change a line quantity
  remove PRODUCT_ID             remove a line
  cart                          list cart lines and total
  checkout NAME EMAIL PHONE     run a payment attempt
  recommend QUERY               ask the AI assistant for products
`

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Storefront] Failed to load config: %v", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("[Storefront] Failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer store.Close()

	ctx := context.Background()

	// Wire the core: API client, signal hub, session and cart stores.
	// Each process run is one "page load": restore first, then act.
	api := apiclient.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	hub := signal.NewHub[session.Change]()
	sessions := session.NewStore(store, hub)
	carts := cart.NewStore(store, hub)

	api.SetTokenSource(sessions.Token)
	api.SetUnauthorizedHook(func() { sessions.Logout(ctx) })

	sessions.Restore(ctx)
	carts.Restore(ctx)

	accounts := account.NewClient(api)
	products := catalog.NewClient(api)
	assistant := aichat.NewClient(api)

	if err := run(ctx, args, sessions, carts, accounts, products, assistant, api); err != nil {
		log.Fatalf("[Storefront] %v", err)
	}
}

func run(ctx context.Context, args []string, sessions *session.Store, carts *cart.Store,
	accounts *account.Client, products *catalog.Client, assistant *aichat.Client,
	api *apiclient.Client) error {

	switch cmd, rest := args[0], args[1:]; cmd {
	case "status":
		printStatus(sessions, carts)
		return nil

	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("login needs EMAIL PASSWORD")
		}
		user, token, err := accounts.Login(ctx, rest[0], rest[1])
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		sessions.Login(ctx, user, token)
		fmt.Printf("signed in as %s <%s>\n", user.Name, user.Email)
		return nil

	case "logout":
		sessions.Logout(ctx)
		fmt.Println("signed out")
		return nil

	case "register":
		if len(rest) != 3 {
			return fmt.Errorf("register needs NAME EMAIL PASSWORD")
		}
		user, token, err := accounts.Register(ctx, rest[0], rest[1], rest[2])
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		sessions.Login(ctx, user, token)
		fmt.Printf("registered and signed in as %s\n", user.Email)
		return nil

	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("add needs PRODUCT_ID [QTY]")
		}
		qty := 1
		if len(rest) > 1 {
			qty, _ = strconv.Atoi(rest[1])
		}
		product, err := products.Get(ctx, rest[0])
		if err != nil {
			return fmt.Errorf("fetch product: %w", err)
		}
		carts.AddItem(ctx, product, qty)
		fmt.Printf("cart: %d lines, total %d\n", carts.Len(), carts.Total())
		return nil

	case "qty":
		if len(rest) != 2 {
			return fmt.Errorf("qty needs PRODUCT_ID QTY")
		}
		qty, _ := strconv.Atoi(rest[1])
		if err := carts.UpdateQuantity(ctx, rest[0], qty); err != nil {
			return err
		}
		fmt.Printf("cart total %d\n", carts.Total())
		return nil

	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("remove needs PRODUCT_ID")
		}
		carts.RemoveItem(ctx, rest[0])
		fmt.Printf("cart: %d lines\n", carts.Len())
		return nil

	case "cart":
		for _, line := range carts.Lines() {
			fmt.Printf("%-20s x%-3d @%-8d = %d\n", line.Name, line.Quantity, line.UnitPrice, line.Subtotal())
		}
		fmt.Printf("total: %d\n", carts.Total())
		return nil

	case "checkout":
		if len(rest) != 3 {
			return fmt.Errorf("checkout needs NAME EMAIL PHONE")
		}
		coordinator := payment.NewCoordinator(api, carts, sessions, &promptWidget{})
		err := coordinator.Begin(ctx, payment.Customer{Name: rest[0], Email: rest[1], Phone: rest[2]})
		if err != nil {
			return err
		}
		result := <-coordinator.Done()
		if result.Err != nil {
			return fmt.Errorf("order %s %s: %w", result.OrderID, result.Status, result.Err)
		}
		fmt.Printf("order %s: %s (amount %d)\n", result.OrderID, result.Status, result.Amount)
		return nil

	case "recommend":
		if len(rest) < 1 {
			return fmt.Errorf("recommend needs QUERY")
		}
		reply, err := assistant.Recommend(ctx, strings.Join(rest, " "))
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
		fmt.Println(reply)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printStatus(sessions *session.Store, carts *cart.Store) {
	if user := sessions.CurrentUser(); user != nil {
		fmt.Printf("session: %s as %s <%s>\n", sessions.State(), user.Name, user.Email)
	} else {
		fmt.Printf("session: %s\n", sessions.State())
	}
	fmt.Printf("cart: %d lines, total %d\n", carts.Len(), carts.Total())
}

// openStorage builds the persisted state backend named in the config.
func openStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryStorage(), nil
	case config.DriverFile:
		return storage.NewFileStorage(cfg.StatePath)
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return storage.NewRedisStorage(client, 0), nil
	case config.DriverPostgres:
		db, err := storage.ConnectPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStorage(db)
	case config.DriverDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, err
		}
		return storage.NewDynamoStorage(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// promptWidget stands in for the embedded provider widget in a terminal:
// it shows the provider token and asks the operator for the outcome the
// hosted payment page reported.
type promptWidget struct{}

func (w *promptWidget) Pay(token string, cb payment.Callbacks) {
	fmt.Printf("provider token: %s\n", token)
	fmt.Print("payment outcome [success/pending/error/close]: ")

	scanner := bufio.NewScanner(os.Stdin)
	var answer string
	if scanner.Scan() {
		answer = strings.TrimSpace(scanner.Text())
	}

	switch answer {
	case "success":
		cb.OnSuccess()
	case "pending":
		cb.OnPending()
	case "error":
		cb.OnError(nil)
	default:
		cb.OnClose()
	}
}
