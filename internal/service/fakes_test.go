package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/remote"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var errRemoteDown = errors.New("remote down")

type fakeRow struct {
	userID string
	line   cart.Line
}

// fakeCartRemote 内存版远端购物车集合
type fakeCartRemote struct {
	mu      sync.Mutex
	rows    map[string]fakeRow
	order   []string
	nextID  int
	creates int
	updates int
	deletes int
	fetches int

	fetchErr  error
	createErr error
	updateErr error
	deleteErr error
	// resurrect 前 N 次校验拉取时把已删除的行重新放回，模拟最终一致性
	resurrect int
	deleted   []fakeRow
}

func newFakeCartRemote() *fakeCartRemote {
	return &fakeCartRemote{rows: make(map[string]fakeRow)}
}

func (f *fakeCartRemote) seed(userID string, lines ...cart.Line) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range lines {
		f.nextID++
		id := strconv.Itoa(f.nextID)
		f.rows[id] = fakeRow{userID: userID, line: line.WithRemoteID(id)}
		f.order = append(f.order, id)
	}
}

func (f *fakeCartRemote) FetchAll(ctx context.Context, userID string) ([]cart.Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if err := ctx.Err(); err != nil {
		return nil, &remote.SyncError{Op: "fetch", Err: err}
	}
	if f.fetchErr != nil {
		return nil, &remote.SyncError{Op: "fetch", Err: f.fetchErr}
	}
	if f.resurrect > 0 && len(f.deleted) > 0 {
		f.resurrect--
		for _, row := range f.deleted {
			f.rows[row.line.RemoteID] = row
			f.order = append(f.order, row.line.RemoteID)
		}
		f.deleted = nil
	}
	lines := make([]cart.Line, 0)
	for _, id := range f.order {
		row, ok := f.rows[id]
		if ok && row.userID == userID {
			lines = append(lines, row.line)
		}
	}
	return lines, nil
}

func (f *fakeCartRemote) Create(ctx context.Context, userID string, line cart.Line) (cart.Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if err := ctx.Err(); err != nil {
		return cart.Line{}, &remote.SyncError{Op: "create", Err: err}
	}
	if f.createErr != nil {
		return cart.Line{}, &remote.SyncError{Op: "create", Err: f.createErr}
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.rows[id] = fakeRow{userID: userID, line: line.WithRemoteID(id)}
	f.order = append(f.order, id)
	return line.WithRemoteID(id), nil
}

func (f *fakeCartRemote) Update(ctx context.Context, userID, remoteID string, line cart.Line) (cart.Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if err := ctx.Err(); err != nil {
		return cart.Line{}, &remote.SyncError{Op: "update", RemoteID: remoteID, Err: err}
	}
	if f.updateErr != nil {
		return cart.Line{}, &remote.SyncError{Op: "update", RemoteID: remoteID, Err: f.updateErr}
	}
	if _, ok := f.rows[remoteID]; !ok {
		return cart.Line{}, &remote.SyncError{Op: "update", RemoteID: remoteID, Status: 404, Err: remote.ErrStaleReference}
	}
	f.rows[remoteID] = fakeRow{userID: userID, line: line.WithRemoteID(remoteID)}
	return line.WithRemoteID(remoteID), nil
}

func (f *fakeCartRemote) Delete(ctx context.Context, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if err := ctx.Err(); err != nil {
		return &remote.SyncError{Op: "delete", RemoteID: remoteID, Err: err}
	}
	if f.deleteErr != nil {
		return &remote.SyncError{Op: "delete", RemoteID: remoteID, Err: f.deleteErr}
	}
	if row, ok := f.rows[remoteID]; ok {
		f.deleted = append(f.deleted, row)
	}
	delete(f.rows, remoteID)
	return nil
}

func (f *fakeCartRemote) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, row := range f.rows {
		if row.userID == userID {
			n++
		}
	}
	return n
}

// fakeProductSource 内存版商品目录
type fakeProductSource struct {
	mu       sync.Mutex
	products map[string]models.Product
	lists    int
	err      error
}

func newFakeProductSource(products ...models.Product) *fakeProductSource {
	src := &fakeProductSource{products: make(map[string]models.Product)}
	for _, p := range products {
		src.products[p.ID] = p
	}
	return src
}

func (f *fakeProductSource) List(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Product, 0, len(f.products))
	for i := 1; i <= len(f.products)+10; i++ {
		if p, ok := f.products[strconv.Itoa(i)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductSource) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0)
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductSource) Get(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, &remote.SyncError{Op: "get_product", RemoteID: id, Status: 404, Err: &remote.StatusError{Status: 404}}
	}
	return &p, nil
}

func (f *fakeProductSource) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, &remote.SyncError{Op: "update_stock", RemoteID: id, Err: &remote.StatusError{Status: 404}}
	}
	p.Stock = stock
	f.products[id] = p
	return &p, nil
}

func (f *fakeProductSource) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

// fakeOrderRemote 内存版订单集合
type fakeOrderRemote struct {
	mu        sync.Mutex
	orders    map[string]models.Order
	nextID    int
	createErr error
}

func newFakeOrderRemote() *fakeOrderRemote {
	return &fakeOrderRemote{orders: make(map[string]models.Order)}
}

func (f *fakeOrderRemote) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, &remote.SyncError{Op: "create_order", Err: err}
	}
	if f.createErr != nil {
		return nil, &remote.SyncError{Op: "create_order", Err: f.createErr}
	}
	f.nextID++
	order.ID = strconv.Itoa(f.nextID)
	f.orders[order.ID] = order
	return &order, nil
}

func (f *fakeOrderRemote) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, 0)
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRemote) Get(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &remote.SyncError{Op: "get_order", RemoteID: id, Err: &remote.StatusError{Status: 404}}
	}
	return &o, nil
}

func (f *fakeOrderRemote) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &remote.SyncError{Op: "update_order_status", RemoteID: id, Err: &remote.StatusError{Status: 404}}
	}
	o.Status = status
	f.orders[id] = o
	return &o, nil
}

// fakeUserRemote 内存版用户集合
type fakeUserRemote struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRemote(users ...models.User) *fakeUserRemote {
	f := &fakeUserRemote{users: make(map[string]models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRemote) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRemote) Get(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, &remote.SyncError{Op: "get_user", RemoteID: id, Err: &remote.StatusError{Status: 404}}
	}
	return &u, nil
}

func (f *fakeUserRemote) Update(ctx context.Context, id string, update remote.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, &remote.SyncError{Op: "update_user", RemoteID: id, Err: &remote.StatusError{Status: 404}}
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	f.users[id] = u
	return &u, nil
}

type recordedNotification struct {
	userID  string
	kind    string
	message string
}

// recordingSink 记录提示消息
type recordingSink struct {
	mu    sync.Mutex
	items []recordedNotification
}

func (r *recordingSink) Notify(userID, kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, recordedNotification{userID: userID, kind: kind, message: message})
}

func (r *recordingSink) last() recordedNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return recordedNotification{}
	}
	return r.items[len(r.items)-1]
}

// fakeEnqueuer 记录投递的任务
type fakeEnqueuer struct {
	mu     sync.Mutex
	sweeps []string
	placed []string
}

func (f *fakeEnqueuer) EnqueueCartSweep(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps = append(f.sweeps, userID)
	return nil
}

func (f *fakeEnqueuer) EnqueueOrderPlaced(orderID, userID string, total decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, orderID)
	return nil
}

func demoProduct(id, name string, price int64, discount int64, stock int) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Category: "electronics",
		Price:    models.NewMoney(price),
		Discount: models.NewMoney(discount),
		Stock:    stock,
	}
}

// cartFixture 组装购物车相关服务
type cartFixture struct {
	remote   *fakeCartRemote
	products *fakeProductSource
	sessions *SessionRegistry
	sink     *recordingSink
	carts    *CartService
	catalog  *CatalogService
}

func newCartFixture(products ...models.Product) *cartFixture {
	remoteCart := newFakeCartRemote()
	source := newFakeProductSource(products...)
	sessions := NewSessionRegistry(nil)
	sink := &recordingSink{}
	catalog := NewCatalogService(source)
	reconciler := NewClearCartReconciler(remoteCart, ReconcilerOptions{MaxAttempts: 3, SettleDelay: 0})
	carts := NewCartService(remoteCart, catalog, sessions, reconciler, pricing.DefaultRules(), sink)
	return &cartFixture{
		remote:   remoteCart,
		products: source,
		sessions: sessions,
		sink:     sink,
		carts:    carts,
		catalog:  catalog,
	}
}

func (f *cartFixture) open(userID string) *Session {
	session, _ := f.sessions.Open(userID)
	return session
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.JWT.SecretKey = "test-secret"
	return cfg
}

func newTestAuthService(f *cartFixture, users *fakeUserRemote) *AuthService {
	return newAuthService(testConfig(), users, f.sessions, f.carts, bcrypt.MinCost)
}

// memoryMirror 内存版会话镜像
type memoryMirror struct {
	mu    sync.Mutex
	users map[string]models.User
	carts map[string]int
}

func newMemoryMirror() *memoryMirror {
	return &memoryMirror{users: make(map[string]models.User), carts: make(map[string]int)}
}

func (m *memoryMirror) SaveCart(ctx context.Context, userID string, snapshot cart.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = snapshot.ItemCount()
	return nil
}

func (m *memoryMirror) SaveSession(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memoryMirror) LoadSession(ctx context.Context, userID string) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (m *memoryMirror) Drop(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	delete(m.carts, userID)
	return nil
}

// unavailableUserRemote 用户服务整体不可用
type unavailableUserRemote struct {
	*fakeUserRemote
}

func (u unavailableUserRemote) Get(ctx context.Context, id string) (*models.User, error) {
	return nil, &remote.SyncError{Op: "get_user", RemoteID: id, Status: 503, Err: &remote.StatusError{Status: 503}}
}
