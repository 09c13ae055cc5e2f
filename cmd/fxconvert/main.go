package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/damon-houk/currency-widget/internal/app"
	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/config"
	"github.com/damon-houk/currency-widget/internal/domain/conversion"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/domain/format"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/urfave/cli/v2"
)

const (
	exitUsage       = 1
	exitUnavailable = 2
)

func main() {
	if err := newCLI(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func newCLI(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "fxconvert",
		Usage:     "convert between fiat and crypto currencies from the terminal",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"FXW_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "override the store driver (badger, redis, memory)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "convert",
				Usage: "convert an amount",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Required: true},
					&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Required: true},
					&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Required: true},
				},
				Action: convertAction,
			},
			{
				Name:  "format",
				Usage: "render a number as the widget would",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "value", Usage: "render as a conversion result"},
					&cli.StringFlag{Name: "input", Usage: "render as keystroke input"},
				},
				Action: formatAction,
			},
			{
				Name:   "rates",
				Usage:  "fetch and print the current rates",
				Action: ratesAction,
			},
			{
				Name:  "currencies",
				Usage: "list supported currencies",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}},
					&cli.StringFlag{Name: "lang", Value: service.LanguageEnglish},
				},
				Action: currenciesAction,
			},
		},
	}
}

func openApp(c *cli.Context) (*app.App, error) {
	cfg, err := config.Load(c.String("config"), "")
	if err != nil {
		return nil, err
	}
	if driver := c.String("store"); driver != "" {
		cfg.Store.Driver = driver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	level := logger.WarnLevel
	if c.Bool("verbose") {
		level = logger.DebugLevel
	}

	return app.New(c.Context, cfg, logger.NewJSONLogger(c.App.ErrWriter, level))
}

func convertAction(c *cli.Context) error {
	amount, err := format.ParseFormattedNumber(c.String("amount"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	// partial rate data may still cover the pair
	_ = a.LoadRates(c.Context)

	from := service.NormalizeCode(c.String("from"))
	to := service.NormalizeCode(c.String("to"))

	result, err := a.Conversion.Convert(c.Context, amount, from, to)
	if err != nil {
		if errors.Is(err, conversion.ErrUnavailableRate) {
			return cli.Exit(err.Error(), exitUnavailable)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s %s = %s %s\n",
		format.FormatConversionResult(result.Amount), result.From, result.Formatted, result.To)
	return nil
}

func formatAction(c *cli.Context) error {
	switch {
	case c.IsSet("value"):
		fmt.Fprintln(c.App.Writer, format.FormatConversionResult(c.Float64("value")))
	case c.IsSet("input"):
		fmt.Fprintln(c.App.Writer, format.FormatUserInput(c.String("input")))
	default:
		return cli.Exit("one of --value or --input is required", exitUsage)
	}
	return nil
}

func ratesAction(c *cli.Context) error {
	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.LoadRates(c.Context); err != nil {
		return cli.Exit(err.Error(), exitUnavailable)
	}

	snapshot := a.RateStore.Snapshot()
	status := a.Rates.Status()

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BTC/USD\t%s\t(%s)\n", format.FormatConversionResult(snapshot.BTCToUSD), status.Crypto.Origin)
	fmt.Fprintf(w, "fiat per USD\t\t(%s)\n", status.Fiat.Origin)
	for _, code := range sortedCodes(snapshot.FiatRates) {
		fmt.Fprintf(w, "  %s\t%s\n", code, format.FormatConversionResult(snapshot.FiatRates[code]))
	}
	fmt.Fprintln(w, "BTC per unit\t\t")
	for _, code := range sortedCodes(snapshot.CryptoRates) {
		fmt.Fprintf(w, "  %s\t%s\n", code, format.FormatConversionResult(snapshot.CryptoRates[code]))
	}
	return w.Flush()
}

func currenciesAction(c *cli.Context) error {
	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	lang := c.String("lang")
	if !service.IsSupportedLanguage(lang) {
		return cli.Exit(fmt.Sprintf("unsupported language %q", lang), exitUsage)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	for _, cur := range a.Catalog.Search(c.String("search"), lang) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cur.Code, cur.Kind, cur.Symbol, cur.Name(lang))
	}
	return w.Flush()
}

func sortedCodes[M ~map[entity.CurrencyCode]float64](rates M) []entity.CurrencyCode {
	codes := make([]entity.CurrencyCode, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
