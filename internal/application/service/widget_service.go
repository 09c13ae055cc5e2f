// Package service internal/application/service/widget_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/damon-houk/currency-widget/internal/domain/conversion"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/domain/format"
	"github.com/damon-houk/currency-widget/internal/domain/repository"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
)

// Widget list errors
var (
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrLastCurrency      = errors.New("cannot remove the last currency")
	ErrDuplicateCurrency = errors.New("currency is already in the list")
	ErrInvalidOrder      = errors.New("order must contain exactly the listed currencies")
)

// Row is one currency line of the widget
type Row struct {
	Code      entity.CurrencyCode `json:"code"`
	Kind      entity.CurrencyKind `json:"kind"`
	Symbol    string              `json:"symbol"`
	Name      string              `json:"name"`
	Amount    float64             `json:"amount"`
	Display   string              `json:"display"`
	Editing   bool                `json:"editing"`
	Available bool                `json:"available"`
}

// View is the rendered widget
type View struct {
	Rows               []Row               `json:"rows"`
	LastEditedCurrency entity.CurrencyCode `json:"lastEditedCurrency"`
	LastEditedAmount   float64             `json:"lastEditedAmount"`
	Language           string              `json:"language"`
	// Error replaces Rows when no rate data is loaded
	Error string `json:"error,omitempty"`
}

// Err returns ErrNoRateData when the view carries an error instead of rows
func (v View) Err() error {
	if v.Error != "" {
		return ErrNoRateData
	}
	return nil
}

// SearchResult is one catalog match for the add-currency search
type SearchResult struct {
	Code     entity.CurrencyCode `json:"code"`
	Kind     entity.CurrencyKind `json:"kind"`
	Symbol   string              `json:"symbol"`
	Name     string              `json:"name"`
	Selected bool                `json:"selected"`
}

// WidgetService is the controller behind the widget. It owns the currency list
// and the last edited currency/amount; every view is recomputed from the
// current rates and the current edit state.
//
// Unavailable rates fall back to the entered amount on this call site.
type WidgetService struct {
	rates   *RateService
	catalog *entity.Catalog
	prefs   repository.PreferencesRepository
	logger  logger.Logger

	mutex        sync.Mutex
	order        []entity.CurrencyCode
	lastCurrency entity.CurrencyCode
	lastAmount   float64
	input        string // formatted text of the row being edited, empty once blurred
	language     string
}

// NewWidgetService creates a widget over the given catalog with default state.
// Call Start to restore saved preferences.
func NewWidgetService(rates *RateService, catalog *entity.Catalog, prefs repository.PreferencesRepository, log logger.Logger) *WidgetService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	s := &WidgetService{
		rates:   rates,
		catalog: catalog,
		prefs:   prefs,
		logger:  log,
	}
	s.apply(entity.DefaultPreferences(), "")
	return s
}

// Start restores the saved preferences. acceptLanguage is used when no
// language was saved.
func (s *WidgetService) Start(ctx context.Context, acceptLanguage string) View {
	prefs, err := s.prefs.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load preferences, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		prefs = entity.DefaultPreferences()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.apply(prefs, acceptLanguage)
	return s.view()
}

func (s *WidgetService) apply(prefs entity.Preferences, acceptLanguage string) {
	order := s.known(prefs.CurrencyOrder)
	if len(order) == 0 {
		order = s.known(entity.DefaultCurrencyOrder)
	}

	s.order = order
	s.lastCurrency = prefs.LastEditedCurrency
	s.lastAmount = prefs.LastEditedAmount
	if !s.listed(s.lastCurrency) && len(order) > 0 {
		s.lastCurrency = order[0]
	}
	s.input = ""
	s.language = ResolveLanguage(prefs.UserLanguage, acceptLanguage)
}

func (s *WidgetService) known(codes []entity.CurrencyCode) []entity.CurrencyCode {
	seen := make(map[entity.CurrencyCode]bool, len(codes))
	out := make([]entity.CurrencyCode, 0, len(codes))
	for _, code := range codes {
		if seen[code] || !s.catalog.Contains(code) {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// View returns the widget rendered against the current rates
func (s *WidgetService) View() View {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.view()
}

// Edit handles a keystroke in the row for code. Input that does not hold a
// number is shown as typed and leaves the last edited state alone.
func (s *WidgetService) Edit(ctx context.Context, code entity.CurrencyCode, raw string) (View, error) {
	display := format.FormatUserInput(raw)
	amount, parseErr := format.ParseFormattedNumber(display)

	s.mutex.Lock()
	if !s.listed(code) {
		s.mutex.Unlock()
		return View{}, fmt.Errorf("%w: %s is not in the list", ErrUnknownCurrency, code)
	}

	if parseErr != nil {
		view := s.view()
		s.mutex.Unlock()

		for i := range view.Rows {
			if view.Rows[i].Code == code {
				view.Rows[i].Display = display
				view.Rows[i].Editing = true
			}
		}
		return view, nil
	}

	s.lastCurrency = code
	s.lastAmount = amount
	s.input = display
	view := s.view()
	s.mutex.Unlock()

	if err := s.prefs.SaveLastInput(ctx, code, amount); err != nil {
		s.logger.Warn("Failed to save last input", map[string]interface{}{
			"currency": code,
			"error":    err.Error(),
		})
	}

	return view, nil
}

// Blur finishes editing and returns how the edited field should now read.
// Unparseable or zero input reads "0.00".
func (s *WidgetService) Blur(raw string) string {
	s.mutex.Lock()
	s.input = ""
	s.mutex.Unlock()

	amount, err := format.ParseFormattedNumber(raw)
	if err != nil || amount == 0 {
		return format.FormatConversionResult(0)
	}
	return format.FormatConversionResult(amount)
}

// Add appends code to the list
func (s *WidgetService) Add(ctx context.Context, code entity.CurrencyCode) (View, error) {
	if !s.catalog.Contains(code) {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}

	s.mutex.Lock()
	if s.listed(code) {
		s.mutex.Unlock()
		return View{}, fmt.Errorf("%w: %s", ErrDuplicateCurrency, code)
	}
	s.order = append(s.order, code)
	order, view := s.snapshotOrder(), s.view()
	s.mutex.Unlock()

	s.saveOrder(ctx, order)
	return view, nil
}

// Remove drops code from the list; the last remaining currency cannot be removed
func (s *WidgetService) Remove(ctx context.Context, code entity.CurrencyCode) (View, error) {
	s.mutex.Lock()
	idx := s.index(code)
	if idx < 0 {
		s.mutex.Unlock()
		return View{}, fmt.Errorf("%w: %s is not in the list", ErrUnknownCurrency, code)
	}
	if len(s.order) <= 1 {
		s.mutex.Unlock()
		return View{}, ErrLastCurrency
	}
	s.order = append(s.order[:idx:idx], s.order[idx+1:]...)
	order, view := s.snapshotOrder(), s.view()
	s.mutex.Unlock()

	s.saveOrder(ctx, order)
	return view, nil
}

// Toggle adds code when it is missing and removes it otherwise
func (s *WidgetService) Toggle(ctx context.Context, code entity.CurrencyCode) (View, error) {
	s.mutex.Lock()
	listed := s.listed(code)
	s.mutex.Unlock()

	if listed {
		return s.Remove(ctx, code)
	}
	return s.Add(ctx, code)
}

// Reorder replaces the list order; order must be a permutation of the list
func (s *WidgetService) Reorder(ctx context.Context, order []entity.CurrencyCode) (View, error) {
	s.mutex.Lock()
	if !s.isPermutation(order) {
		s.mutex.Unlock()
		return View{}, ErrInvalidOrder
	}
	s.order = append([]entity.CurrencyCode(nil), order...)
	saved, view := s.snapshotOrder(), s.view()
	s.mutex.Unlock()

	s.saveOrder(ctx, saved)
	return view, nil
}

// SetLanguage switches the display language
func (s *WidgetService) SetLanguage(ctx context.Context, lang string) (View, error) {
	if !IsSupportedLanguage(lang) {
		return View{}, fmt.Errorf("unsupported language %q", lang)
	}

	s.mutex.Lock()
	s.language = lang
	view := s.view()
	s.mutex.Unlock()

	if err := s.prefs.SaveLanguage(ctx, lang); err != nil {
		s.logger.Warn("Failed to save language", map[string]interface{}{
			"language": lang,
			"error":    err.Error(),
		})
	}

	return view, nil
}

// Search lists catalog currencies matching term in the current language
func (s *WidgetService) Search(term string) []SearchResult {
	return s.SearchLanguage(term, "")
}

// SearchLanguage is Search with names in lang; an unsupported lang uses the current language
func (s *WidgetService) SearchLanguage(term, lang string) []SearchResult {
	s.mutex.Lock()
	if !IsSupportedLanguage(lang) {
		lang = s.language
	}
	selected := make(map[entity.CurrencyCode]bool, len(s.order))
	for _, code := range s.order {
		selected[code] = true
	}
	s.mutex.Unlock()

	matches := s.catalog.Search(term, lang)
	results := make([]SearchResult, 0, len(matches))
	for _, cur := range matches {
		results = append(results, SearchResult{
			Code:     cur.Code,
			Kind:     cur.Kind,
			Symbol:   cur.Symbol,
			Name:     cur.Name(lang),
			Selected: selected[cur.Code],
		})
	}
	return results
}

// Refresh refreshes the rates and recomputes the view. The edit state is read
// when the refresh completes, so edits made meanwhile are honoured.
func (s *WidgetService) Refresh(ctx context.Context) (View, error) {
	_, err := s.rates.Refresh(ctx)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.view(), err
}

func (s *WidgetService) view() View {
	snapshot := s.rates.Store().Snapshot()
	if snapshot.Empty() {
		return View{
			LastEditedCurrency: s.lastCurrency,
			LastEditedAmount:   s.lastAmount,
			Language:           s.language,
			Error:              ErrNoRateData.Error(),
		}
	}
	rates := conversion.NewContext(snapshot, conversion.FallbackAmount)

	rows := make([]Row, 0, len(s.order))
	for _, code := range s.order {
		row := Row{
			Code:      code,
			Symbol:    s.catalog.Symbol(code),
			Name:      s.catalog.Name(code, s.language),
			Available: rates.Available(code),
		}
		if kind, ok := s.catalog.Kind(code); ok {
			row.Kind = kind
		}

		row.Amount = rates.Convert(s.lastAmount, s.lastCurrency, code)
		switch {
		case code == s.lastCurrency && s.input != "":
			row.Display = s.input
			row.Editing = true
		case code == s.lastCurrency:
			row.Display = format.FormatConversionResult(s.lastAmount)
		default:
			row.Display = format.FormatConversionResult(row.Amount)
		}

		rows = append(rows, row)
	}

	return View{
		Rows:               rows,
		LastEditedCurrency: s.lastCurrency,
		LastEditedAmount:   s.lastAmount,
		Language:           s.language,
	}
}

func (s *WidgetService) index(code entity.CurrencyCode) int {
	for i, c := range s.order {
		if c == code {
			return i
		}
	}
	return -1
}

func (s *WidgetService) listed(code entity.CurrencyCode) bool {
	return s.index(code) >= 0
}

func (s *WidgetService) isPermutation(order []entity.CurrencyCode) bool {
	if len(order) != len(s.order) {
		return false
	}
	seen := make(map[entity.CurrencyCode]bool, len(order))
	for _, code := range order {
		if seen[code] || !s.listed(code) {
			return false
		}
		seen[code] = true
	}
	return true
}

func (s *WidgetService) snapshotOrder() []entity.CurrencyCode {
	return append([]entity.CurrencyCode(nil), s.order...)
}

func (s *WidgetService) saveOrder(ctx context.Context, order []entity.CurrencyCode) {
	if err := s.prefs.SaveOrder(ctx, order); err != nil {
		s.logger.Warn("Failed to save currency order", map[string]interface{}{
			"order": order,
			"error": err.Error(),
		})
	}
}
