package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"text/tabwriter"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/cartstore"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/checkout"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/client"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/currency"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/session"
)

var errUsage = errors.New("usage")

type app struct {
	api      *client.Client
	cart     *cartstore.Store
	display  *currency.Display
	checkout *checkout.Checkout
	out      io.Writer
}

// newApp resolves the session, loads the cart and the rate table. Load and
// rate failures are not fatal: the cart starts empty and fallback rates apply.
func newApp(ctx context.Context, api *client.Client, store session.Store, code string, out io.Writer, logger *log.Logger) (*app, error) {
	sessionID, err := session.Ensure(ctx, store)
	if err != nil {
		return nil, err
	}

	display := currency.New(logger)
	_ = display.InitRates(ctx, api)
	display.SetCurrency(code)

	cart := cartstore.New(api, logger)
	if err := cart.Start(ctx, sessionID); err != nil {
		fmt.Fprintln(out, "warning: could not load cart:", err)
	}

	return &app{
		api:      api,
		cart:     cart,
		display:  display,
		checkout: checkout.New(api, cart, display, logger),
		out:      out,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "session":
		fmt.Fprintln(a.out, a.cart.SessionID())
		return nil
	case "products":
		return a.products(ctx, rest)
	case "categories":
		return a.categories(ctx)
	case "product":
		return a.product(ctx, rest)
	case "cart":
		return a.printCart()
	case "add":
		return a.add(ctx, rest)
	case "qty":
		return a.qty(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "clear":
		if err := a.cart.Clear(ctx); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		fmt.Fprintln(a.out, "Cart cleared")
		return nil
	case "checkout":
		return a.placeOrder(ctx, rest)
	case "rates":
		return a.rates()
	default:
		return errUsage
	}
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var filter domain.ProductFilter
	fs.StringVar(&filter.Category, "category", "", "")
	fs.StringVar(&filter.Condition, "condition", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	products, err := a.api.ListProducts(ctx, filter)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCONDITION\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Brand, p.Condition, a.display.Format(p.Price), p.Stock)
	}
	return tw.Flush()
}

func (a *app) categories(ctx context.Context) error {
	list, err := a.api.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY	PRODUCTS	IN STOCK")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Name, c.Products, c.InStock)
	}
	return tw.Flush()
}

func (a *app) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := a.api.GetProduct(ctx, args[0])
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintln(a.out, "Product not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	fmt.Fprintf(a.out, "%s (%s)\n%s\n\nPrice:     %s\nCondition: %s\nCategory:  %s\nStock:     %d\n",
		p.Name, p.Brand, p.Description, a.display.Format(p.Price), p.Condition, p.Category, p.Stock)
	if len(p.Sizes) > 0 {
		fmt.Fprintf(a.out, "Sizes:     %v\n", p.Sizes)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	qty := fs.Int("qty", 1, "")
	size := fs.String("size", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	productID := fs.Arg(0)

	p, err := a.api.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	var sizePtr *string
	switch {
	case *size != "":
		sizePtr = size
	case len(p.Sizes) > 0:
		sizePtr = &p.Sizes[0]
	}

	if err := a.cart.Add(ctx, productID, *qty, sizePtr); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	fmt.Fprintf(a.out, "Added %s to cart\n", p.Name)
	return a.printCart()
}

func (a *app) qty(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("qty", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	size := fs.String("size", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}
	n, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return errUsage
	}
	if err := a.cart.SetQuantity(ctx, fs.Arg(0), domain.SizeFromKey(*size), n); err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	return a.printCart()
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	size := fs.String("size", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	if err := a.cart.Remove(ctx, fs.Arg(0), domain.SizeFromKey(*size)); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return a.printCart()
}

func (a *app) placeOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var details checkout.ShippingDetails
	fs.StringVar(&details.Name, "name", "", "")
	fs.StringVar(&details.Email, "email", "", "")
	fs.StringVar(&details.Address, "address", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	order, err := a.checkout.PlaceOrder(ctx, details)
	if errors.Is(err, checkout.ErrEmptyCart) {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s placed: %s%.2f (%s)\n", order.ID, currency.SymbolFor(order.Currency), order.Total, order.Status)
	return nil
}

func (a *app) printCart() error {
	snap := a.cart.Snapshot()
	if len(snap.Lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSIZE\tQTY\tPRICE")
	for _, l := range snap.Lines {
		name, price := l.ProductID, 0.0
		if l.Product != nil {
			name, price = l.Product.Name, l.Product.Price
		}
		size := domain.SizeKey(l.Size)
		if size == "" {
			size = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, size, l.Quantity, a.display.Format(price*float64(l.Quantity)))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t%s\n", snap.Count, a.display.Format(snap.Total))
	return tw.Flush()
}

func (a *app) rates() error {
	rates := a.display.Rates()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSYMBOL\tRATE")
	for _, code := range currency.Supported() {
		marker := ""
		if code == a.display.Currency() {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%g%s\n", code, currency.SymbolFor(code), rates[code], marker)
	}
	return tw.Flush()
}
