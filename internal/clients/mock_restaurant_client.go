package clients

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// MockRestaurantClient is an in-memory restaurant API for tests. Err* fields force failures;
// every request is recorded.
type MockRestaurantClient struct {
	mu sync.Mutex

	Orders map[models.OrderStatus][]models.RawOrder
	Tables []models.RawTable

	// QuantitiesEcho overrides the echo of UpdateQuantities when set.
	QuantitiesEcho *models.RawOrder

	// OnCall runs after a request is recorded and before it is answered. It must not call
	// back into the mock.
	OnCall func(call string)

	ErrList       error
	ErrCreate     error
	ErrQuantities error
	ErrComplete   error
	ErrCancel     error
	ErrPayment    error
	ErrTables     error

	CreateRequests   []models.CreateOrderRequest
	QuantityRequests map[models.ID][][]models.QuantityUpdate
	PaymentRequests  []models.PaymentRequest
	Calls            []string

	nextID int
}

func NewMockRestaurantClient() *MockRestaurantClient {
	return &MockRestaurantClient{
		Orders:           make(map[models.OrderStatus][]models.RawOrder),
		QuantityRequests: make(map[models.ID][][]models.QuantityUpdate),
		nextID:           100,
	}
}

func (m *MockRestaurantClient) record(call string) {
	m.Calls = append(m.Calls, call)
	if m.OnCall != nil {
		m.OnCall(call)
	}
}

func (m *MockRestaurantClient) ListOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.RawOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("list:" + status.String())
	if m.ErrList != nil {
		return nil, m.ErrList
	}
	out := make([]models.RawOrder, len(m.Orders[status]))
	copy(out, m.Orders[status])
	return out, nil
}

func (m *MockRestaurantClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.RawOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create")
	m.CreateRequests = append(m.CreateRequests, req)
	if m.ErrCreate != nil {
		return nil, m.ErrCreate
	}

	m.nextID++
	created := models.RawOrder{
		ID:       models.ID(strconv.Itoa(m.nextID)),
		Status:   req.Status.String(),
		TableID:  req.TableID,
		PlacedAt: req.PlacedAt,
	}
	for i, item := range req.Items {
		created.Items = append(created.Items, models.RawOrderLine{
			OrderItemID: models.ID(strconv.Itoa(m.nextID*100 + i + 1)),
			ProductID:   item.ProductID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Price:       decimal.NewNullDecimal(item.Price),
		})
	}
	m.Orders[models.OrderStatusOnGoing] = append(m.Orders[models.OrderStatusOnGoing], created)
	return &created, nil
}

func (m *MockRestaurantClient) UpdateQuantities(ctx context.Context, orderID models.ID, updates []models.QuantityUpdate) (*models.RawOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("quantities:" + orderID.String())
	m.QuantityRequests[orderID] = append(m.QuantityRequests[orderID], updates)
	if m.ErrQuantities != nil {
		return nil, m.ErrQuantities
	}
	if m.QuantitiesEcho != nil {
		echo := *m.QuantitiesEcho
		return &echo, nil
	}
	return &models.RawOrder{OrderID: orderID, Status: models.OrderStatusOnGoing.String()}, nil
}

func (m *MockRestaurantClient) CompleteOrder(ctx context.Context, orderID models.ID) (*models.RawOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("complete:" + orderID.String())
	if m.ErrComplete != nil {
		return nil, m.ErrComplete
	}
	return &models.RawOrder{OrderID: orderID, Status: models.OrderStatusCompleted.String()}, nil
}

func (m *MockRestaurantClient) CancelOrder(ctx context.Context, orderID models.ID) (*models.RawOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("cancel:" + orderID.String())
	if m.ErrCancel != nil {
		return nil, m.ErrCancel
	}
	return &models.RawOrder{OrderID: orderID, Status: models.OrderStatusCancelled.String()}, nil
}

func (m *MockRestaurantClient) RecordPayment(ctx context.Context, req models.PaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("payment:" + req.OrderID.String())
	m.PaymentRequests = append(m.PaymentRequests, req)
	return m.ErrPayment
}

func (m *MockRestaurantClient) AvailableTables(ctx context.Context) ([]models.RawTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("tables")
	if m.ErrTables != nil {
		return nil, m.ErrTables
	}
	out := make([]models.RawTable, len(m.Tables))
	copy(out, m.Tables)
	return out, nil
}

// CallLog returns a copy of the recorded calls in order.
func (m *MockRestaurantClient) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	copy(out, m.Calls)
	return out
}
