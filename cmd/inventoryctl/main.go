package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

func main() {
	_ = godotenv.Load()

	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "inventoryctl",
		Usage: "operate the inventory ledger over gRPC",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "localhost:8083", EnvVars: []string{"INVENTORY_ADDR"}},
			&cli.StringFlag{Name: "user", Usage: "actor id forwarded as x-user-id", EnvVars: []string{"INVENTORY_USER"}},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
		},
		Writer: out,
		Commands: []*cli.Command{
			productCommand(),
			{
				Name:      "record",
				Usage:     "record a SALE or RESTOCK",
				ArgsUsage: "<product-id> <SALE|RESTOCK> <quantity>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "RFC 3339 timestamp, defaults to now"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.ShowSubcommandHelp(c)
					}
					var qty int64
					if _, err := fmt.Sscan(c.Args().Get(2), &qty); err != nil {
						return fmt.Errorf("quantity: %w", err)
					}
					req := map[string]interface{}{
						"product_id": c.Args().Get(0),
						"type":       c.Args().Get(1),
						"quantity":   qty,
					}
					if d := c.String("date"); d != "" {
						req["date"] = d
					}
					return call(c, "InventoryService", "RecordTransaction", req)
				},
			},
			{
				Name:      "restock",
				Usage:     "administrative restock",
				ArgsUsage: "<product-id> <quantity>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.ShowSubcommandHelp(c)
					}
					var qty int64
					if _, err := fmt.Sscan(c.Args().Get(1), &qty); err != nil {
						return fmt.Errorf("quantity: %w", err)
					}
					return call(c, "InventoryService", "AdministrativeRestock", map[string]interface{}{
						"product_id": c.Args().Get(0),
						"quantity":   qty,
					})
				},
			},
			{
				Name:  "transactions",
				Usage: "list ledger entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "type"},
					&cli.StringFlag{Name: "from"},
					&cli.StringFlag{Name: "to"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size", Value: 50},
				},
				Action: func(c *cli.Context) error {
					return call(c, "InventoryService", "ListTransactions", map[string]interface{}{
						"product_id": c.String("product"),
						"category":   c.String("category"),
						"type":       c.String("type"),
						"from":       c.String("from"),
						"to":         c.String("to"),
						"page":       c.Int("page"),
						"page_size":  c.Int("page-size"),
					})
				},
			},
			{
				Name:      "verify",
				Usage:     "replay a product's ledger against its stored stock",
				ArgsUsage: "<product-id>",
				Action: func(c *cli.Context) error {
					return call(c, "InventoryService", "VerifyLedger", map[string]string{"product_id": c.Args().First()})
				},
			},
			{
				Name:  "summarize",
				Usage: "bucketed sales totals",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from"},
					&cli.StringFlag{Name: "to"},
					&cli.StringFlag{Name: "bucket", Value: "DAY"},
					&cli.StringFlag{Name: "product"},
					&cli.StringFlag{Name: "category"},
				},
				Action: func(c *cli.Context) error {
					return call(c, "ReportService", "Summarize", map[string]string{
						"from":       c.String("from"),
						"to":         c.String("to"),
						"bucket":     c.String("bucket"),
						"product_id": c.String("product"),
						"category":   c.String("category"),
					})
				},
			},
			{
				Name:  "top",
				Usage: "best selling products",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from"},
					&cli.StringFlag{Name: "to"},
					&cli.IntFlag{Name: "limit", Value: 5},
				},
				Action: func(c *cli.Context) error {
					return call(c, "ReportService", "TopProducts", map[string]interface{}{
						"from":  c.String("from"),
						"to":    c.String("to"),
						"limit": c.Int("limit"),
					})
				},
			},
			{
				Name:  "today",
				Usage: "today's sales summary",
				Action: func(c *cli.Context) error {
					return call(c, "ReportService", "Today", struct{}{})
				},
			},
			{
				Name:      "recommend",
				Usage:     "restock recommendation; every product when no id is given",
				ArgsUsage: "[product-id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "as-of"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return call(c, "ForecastService", "RestockReport", map[string]string{"as_of": c.String("as-of")})
					}
					return call(c, "ForecastService", "RecommendRestock", map[string]string{
						"product_id": c.Args().First(),
						"as_of":      c.String("as-of"),
					})
				},
			},
			{
				Name:  "alerts",
				Usage: "products at LOW or CRITICAL stock",
				Action: func(c *cli.Context) error {
					return call(c, "ForecastService", "LowStockAlerts", struct{}{})
				},
			},
		},
	}
}

func productCommand() *cli.Command {
	return &cli.Command{
		Name:  "product",
		Usage: "manage products",
		Subcommands: []*cli.Command{
			{
				Name: "add",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "price", Value: "0"},
					&cli.StringFlag{Name: "cost", Value: "0"},
					&cli.Int64Flag{Name: "stock"},
				},
				Action: func(c *cli.Context) error {
					return call(c, "ProductService", "AddProduct", map[string]interface{}{
						"id":            c.String("id"),
						"name":          c.String("name"),
						"category":      c.String("category"),
						"unit_price":    json.Number(c.String("price")),
						"unit_cost":     json.Number(c.String("cost")),
						"initial_stock": c.Int64("stock"),
					})
				},
			},
			{
				Name:      "edit",
				ArgsUsage: "<product-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "price", Value: "0"},
					&cli.StringFlag{Name: "cost", Value: "0"},
				},
				Action: func(c *cli.Context) error {
					return call(c, "ProductService", "EditProduct", map[string]interface{}{
						"id":         c.Args().First(),
						"name":       c.String("name"),
						"category":   c.String("category"),
						"unit_price": json.Number(c.String("price")),
						"unit_cost":  json.Number(c.String("cost")),
					})
				},
			},
			{
				Name:      "get",
				ArgsUsage: "<product-id>",
				Action: func(c *cli.Context) error {
					return call(c, "ProductService", "GetProduct", map[string]string{"id": c.Args().First()})
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "<product-id>",
				Action: func(c *cli.Context) error {
					return call(c, "ProductService", "DeleteProduct", map[string]string{"id": c.Args().First()})
				},
			},
			{
				Name: "list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "search"},
					&cli.BoolFlag{Name: "all", Usage: "include deactivated products"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size", Value: 50},
				},
				Action: func(c *cli.Context) error {
					return call(c, "ProductService", "ListProducts", map[string]interface{}{
						"category":         c.String("category"),
						"search":           c.String("search"),
						"include_inactive": c.Bool("all"),
						"page":             c.Int("page"),
						"page_size":        c.Int("page-size"),
					})
				},
			},
			{
				Name: "categories",
				Action: func(c *cli.Context) error {
					return call(c, "ProductService", "ListCategories", map[string]string{})
				},
			},
		},
	}
}

// call dials the server, invokes one method and prints the JSON reply.
func call(c *cli.Context, service, method string, req interface{}) error {
	conn, err := grpc.NewClient(c.String("addr"), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	if user := c.String("user"); user != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-user-id", user)
	}

	resp, err := rpc.Invoke[json.RawMessage](ctx, conn, rpc.ServicePrefix+service, method, req)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, *resp)
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
