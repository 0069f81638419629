package storefront

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"shop-demo/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// LoadingMessage is shown until the message request resolves.
	LoadingMessage = "Loading..."
	// OfflineMessage replaces the message when the backend cannot be reached.
	OfflineMessage = "Failed to connect to backend"
	// DefaultUserID is sent with every order.
	DefaultUserID = 1
)

// State is a snapshot of everything the client view shows
type State struct {
	Message     string
	Products    []models.Product
	Username    string
	Password    string
	LoggedIn    bool
	OrderStatus string
}

// Alerter shows a message the user has to acknowledge
type Alerter func(msg string)

// View is the client-side state machine: mount, log in, then order.
type View struct {
	api    Client
	alert  Alerter
	logger *zap.Logger

	mu    sync.Mutex
	state State
	token string
}

// NewView creates a view in its initial state
func NewView(api Client, alert Alerter, logger *zap.Logger) *View {
	return &View{
		api:    api,
		alert:  alert,
		logger: logger,
		state:  State{Message: LoadingMessage},
	}
}

// Mount fetches the message and the products concurrently. Failures only
// change what is displayed, so Mount itself never fails.
func (v *View) Mount(ctx context.Context) {
	var g errgroup.Group

	g.Go(func() error {
		msg, err := v.api.Message(ctx)
		if err != nil {
			v.logger.Error("Error fetching message", zap.Error(err))
			msg = OfflineMessage
		}
		v.update(func(s *State) { s.Message = msg })
		return nil
	})

	g.Go(func() error {
		products, err := v.api.Products(ctx)
		if err != nil {
			v.logger.Error("Error fetching products", zap.Error(err))
			return nil
		}
		v.update(func(s *State) { s.Products = products })
		return nil
	})

	_ = g.Wait()
}

func (v *View) SetUsername(username string) {
	v.update(func(s *State) { s.Username = username })
}

func (v *View) SetPassword(password string) {
	v.update(func(s *State) { s.Password = password })
}

// Submit sends the typed credentials
func (v *View) Submit(ctx context.Context) {
	snap := v.Snapshot()

	resp, err := v.api.Login(ctx, models.LoginRequest{Username: snap.Username, Password: snap.Password})
	if err != nil {
		v.logger.Error("Login error", zap.Error(err))
		return
	}

	if !resp.Success {
		if v.alert != nil {
			v.alert("Login failed: " + resp.Message)
		}
		return
	}

	v.mu.Lock()
	v.token = resp.Token
	v.state.LoggedIn = true
	v.state.Username = ""
	v.state.Password = ""
	v.mu.Unlock()
}

// PlaceOrder orders every listed product
func (v *View) PlaceOrder(ctx context.Context) {
	v.mu.Lock()
	if !v.state.LoggedIn {
		v.mu.Unlock()
		return
	}
	productIDs := make([]int, 0, len(v.state.Products))
	for _, p := range v.state.Products {
		productIDs = append(productIDs, p.ID)
	}
	token := v.token
	v.mu.Unlock()

	resp, err := v.api.PlaceOrder(ctx, token, models.OrderRequest{UserID: DefaultUserID, ProductIDs: productIDs})
	if err != nil {
		v.logger.Error("Order error", zap.Error(err))
		return
	}

	if resp.Success {
		v.update(func(s *State) { s.OrderStatus = fmt.Sprintf("Order placed! ID: %d", resp.OrderID) })
	}
}

// Snapshot returns a copy of the current state
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.state
	s.Products = slices.Clone(v.state.Products)
	return s
}

func (v *View) update(fn func(*State)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.state)
}
