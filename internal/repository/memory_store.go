package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/pkg/utils/apperror"
)

// ErrDuplicateKey mirrors a unique constraint violation in the database.
var ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

type memState struct {
	nextID     uint
	users      map[uint]model.User
	types      map[uint]model.RentalUnitType
	properties map[uint]model.Property
	photos     map[uint]model.PropertyPhoto
	units      map[uint]model.RentalUnit
	cards      map[string]uint
	assets     map[uint]model.Asset
	unitAssets map[uint]model.RentalUnitAsset
	batches    map[uint]model.ImportBatch
}

func newMemState() *memState {
	return &memState{
		users:      map[uint]model.User{},
		types:      map[uint]model.RentalUnitType{},
		properties: map[uint]model.Property{},
		photos:     map[uint]model.PropertyPhoto{},
		units:      map[uint]model.RentalUnit{},
		cards:      map[string]uint{},
		assets:     map[uint]model.Asset{},
		unitAssets: map[uint]model.RentalUnitAsset{},
		batches:    map[uint]model.ImportBatch{},
	}
}

func (st *memState) clone() *memState {
	c := &memState{
		nextID:     st.nextID,
		users:      make(map[uint]model.User, len(st.users)),
		types:      make(map[uint]model.RentalUnitType, len(st.types)),
		properties: make(map[uint]model.Property, len(st.properties)),
		photos:     make(map[uint]model.PropertyPhoto, len(st.photos)),
		units:      make(map[uint]model.RentalUnit, len(st.units)),
		cards:      make(map[string]uint, len(st.cards)),
		assets:     make(map[uint]model.Asset, len(st.assets)),
		unitAssets: make(map[uint]model.RentalUnitAsset, len(st.unitAssets)),
		batches:    make(map[uint]model.ImportBatch, len(st.batches)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.types {
		c.types[k] = v
	}
	for k, v := range st.properties {
		c.properties[k] = v
	}
	for k, v := range st.photos {
		c.photos[k] = v
	}
	for k, v := range st.units {
		c.units[k] = v
	}
	for k, v := range st.cards {
		c.cards[k] = v
	}
	for k, v := range st.assets {
		c.assets[k] = v
	}
	for k, v := range st.unitAssets {
		c.unitAssets[k] = v
	}
	for k, v := range st.batches {
		c.batches[k] = v
	}
	return c
}

func (st *memState) id() uint {
	st.nextID++
	return st.nextID
}

// MemoryStore keeps everything in process memory. Transactions work on a
// copy of the state that replaces the live state only when fn succeeds.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, state: newMemState()}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(&MemoryStore{mu: s.mu, state: draft, inTx: true}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	s.state = draft
	return nil
}

func stamp(m *time.Time, u *time.Time) {
	now := time.Now()
	if m != nil && m.IsZero() {
		*m = now
	}
	*u = now
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	defer s.lock()()
	for _, existing := range s.state.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return errors.Wrap(ErrDuplicateKey, "create user")
		}
	}
	u.ID = s.state.id()
	stamp(&u.CreatedAt, &u.UpdatedAt)
	stored := *u
	stored.Properties = nil
	s.state.users[u.ID] = stored
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	defer s.lock()()
	u, ok := s.state.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer s.lock()()
	for _, u := range s.state.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	defer s.lock()()
	users := make([]model.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Rental unit types

func (s *MemoryStore) ListRentalUnitTypes(ctx context.Context, filter TypeFilter) ([]model.RentalUnitType, error) {
	defer s.lock()()
	var types []model.RentalUnitType
	for _, t := range s.state.types {
		if filter.Category != "" && string(t.Category) != filter.Category {
			continue
		}
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (s *MemoryStore) GetRentalUnitType(ctx context.Context, id uint) (*model.RentalUnitType, error) {
	defer s.lock()()
	t, ok := s.state.types[id]
	if !ok {
		return nil, apperror.NotFound("Rental unit type not found")
	}
	return &t, nil
}

func (s *MemoryStore) SaveRentalUnitType(ctx context.Context, t *model.RentalUnitType) error {
	defer s.lock()()
	for _, existing := range s.state.types {
		if existing.ID != t.ID && existing.Name == t.Name && existing.Category == t.Category {
			return errors.Wrap(ErrDuplicateKey, "save rental unit type")
		}
	}
	if t.ID == 0 {
		t.ID = s.state.id()
	}
	stamp(&t.CreatedAt, &t.UpdatedAt)
	s.state.types[t.ID] = *t
	return nil
}

// Properties

func (s *MemoryStore) CreateProperty(ctx context.Context, p *model.Property) error {
	defer s.lock()()
	p.ID = s.state.id()
	stamp(&p.CreatedAt, &p.UpdatedAt)
	s.state.properties[p.ID] = bareProperty(*p)
	return nil
}

func (s *MemoryStore) SaveProperty(ctx context.Context, p *model.Property) error {
	defer s.lock()()
	if _, ok := s.state.properties[p.ID]; !ok {
		return apperror.NotFound("Property not found")
	}
	stamp(nil, &p.UpdatedAt)
	s.state.properties[p.ID] = bareProperty(*p)
	return nil
}

func bareProperty(p model.Property) model.Property {
	p.AssignedManager = nil
	p.Photos = nil
	p.RentalUnitsCount = 0
	return p
}

func (s *MemoryStore) GetProperty(ctx context.Context, id uint) (*model.Property, error) {
	defer s.lock()()
	p, ok := s.state.properties[id]
	if !ok {
		return nil, apperror.NotFound("Property not found")
	}
	s.hydrateProperty(&p)

	for _, photo := range s.state.photos {
		if photo.PropertyID == id {
			p.Photos = append(p.Photos, photo)
		}
	}
	sort.Slice(p.Photos, func(i, j int) bool { return p.Photos[i].Order < p.Photos[j].Order })
	return &p, nil
}

func (s *MemoryStore) hydrateProperty(p *model.Property) {
	if p.AssignedManagerID != nil {
		if u, ok := s.state.users[*p.AssignedManagerID]; ok {
			p.AssignedManager = &u
		}
	}
	p.RentalUnitsCount = s.countUnits(p.ID)
}

func (s *MemoryStore) LockProperty(ctx context.Context, id uint) (*model.Property, error) {
	defer s.lock()()
	p, ok := s.state.properties[id]
	if !ok {
		return nil, apperror.NotFound("Property not found")
	}
	return &p, nil
}

func (s *MemoryStore) ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, int64, error) {
	defer s.lock()()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var matched []model.Property
	for _, p := range s.state.properties {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if filter.ManagerID != nil && (p.AssignedManagerID == nil || *p.AssignedManagerID != *filter.ManagerID) {
			continue
		}
		if search != "" && !containsAny(search, p.Name, p.Street, p.Island, p.City) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	switch {
	case perPage <= 0:
		perPage = defaultPerPage
	case perPage > maxPerPage:
		perPage = maxPerPage
	}
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	out := append([]model.Property(nil), matched[start:end]...)
	for i := range out {
		s.hydrateProperty(&out[i])
	}
	return out, total, nil
}

func containsAny(needle string, haystack ...string) bool {
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) DeleteProperty(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.state.properties[id]; !ok {
		return apperror.NotFound("Property not found")
	}
	delete(s.state.properties, id)
	for pid, photo := range s.state.photos {
		if photo.PropertyID == id {
			delete(s.state.photos, pid)
		}
	}
	return nil
}

func (s *MemoryStore) PropertyNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	defer s.lock()()
	key := model.NormalizeName(name)
	for _, p := range s.state.properties {
		if p.ID != excludeID && model.NormalizeName(p.Name) == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) PropertyAddressTaken(ctx context.Context, street, island string, excludeID uint) (bool, error) {
	defer s.lock()()
	st, is := model.NormalizeName(street), model.NormalizeName(island)
	for _, p := range s.state.properties {
		if p.ID != excludeID && model.NormalizeName(p.Street) == st && model.NormalizeName(p.Island) == is {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) AddPropertyPhoto(ctx context.Context, photo *model.PropertyPhoto) error {
	defer s.lock()()
	photo.ID = s.state.id()
	stamp(&photo.CreatedAt, &photo.UpdatedAt)
	s.state.photos[photo.ID] = *photo
	return nil
}

func (s *MemoryStore) CountPropertyPhotos(ctx context.Context, propertyID uint) (int64, error) {
	defer s.lock()()
	var n int64
	for _, photo := range s.state.photos {
		if photo.PropertyID == propertyID {
			n++
		}
	}
	return n, nil
}

// Rental units

func (s *MemoryStore) CreateRentalUnit(ctx context.Context, u *model.RentalUnit) error {
	defer s.lock()()
	if err := u.CheckOccupancy(); err != nil {
		return err
	}
	if err := s.checkUnitKeys(u, 0); err != nil {
		return errors.Wrap(err, "create rental unit")
	}
	u.ID = s.state.id()
	stamp(&u.CreatedAt, &u.UpdatedAt)
	s.storeUnit(u)
	return nil
}

func (s *MemoryStore) SaveRentalUnit(ctx context.Context, u *model.RentalUnit) error {
	defer s.lock()()
	if _, ok := s.state.units[u.ID]; !ok {
		return apperror.NotFound("Rental unit not found")
	}
	if err := u.CheckOccupancy(); err != nil {
		return err
	}
	if err := s.checkUnitKeys(u, u.ID); err != nil {
		return errors.Wrap(err, "save rental unit")
	}
	s.releaseCards(u.ID)
	stamp(nil, &u.UpdatedAt)
	s.storeUnit(u)
	return nil
}

func (s *MemoryStore) checkUnitKeys(u *model.RentalUnit, self uint) error {
	for _, existing := range s.state.units {
		if existing.ID != self && existing.PropertyID == u.PropertyID && existing.UnitNumber == u.UnitNumber {
			return ErrDuplicateKey
		}
	}
	seen := map[string]bool{}
	for _, c := range u.AccessCards {
		if owner, ok := s.state.cards[c.Number]; (ok && owner != self) || seen[c.Number] {
			return ErrDuplicateKey
		}
		seen[c.Number] = true
	}
	return nil
}

func (s *MemoryStore) storeUnit(u *model.RentalUnit) {
	cards := make([]model.AccessCard, len(u.AccessCards))
	for i, c := range u.AccessCards {
		c.RentalUnitID = u.ID
		if c.ID == 0 {
			c.ID = s.state.id()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		cards[i] = c
		s.state.cards[c.Number] = u.ID
	}
	u.AccessCards = cards
	u.SyncCardNumbers()

	stored := *u
	stored.AccessCards = append([]model.AccessCard(nil), cards...)
	stored.Property = nil
	stored.Assets = nil
	s.state.units[u.ID] = stored
}

func (s *MemoryStore) releaseCards(unitID uint) {
	for number, owner := range s.state.cards {
		if owner == unitID {
			delete(s.state.cards, number)
		}
	}
}

func (s *MemoryStore) GetRentalUnit(ctx context.Context, id uint) (*model.RentalUnit, error) {
	defer s.lock()()
	u, ok := s.state.units[id]
	if !ok {
		return nil, apperror.NotFound("Rental unit not found")
	}
	s.hydrateUnit(&u)
	u.Assets = s.sortedUnitAssets(id, true)
	return &u, nil
}

func (s *MemoryStore) hydrateUnit(u *model.RentalUnit) {
	u.AccessCards = append([]model.AccessCard(nil), u.AccessCards...)
	u.SyncCardNumbers()
	if p, ok := s.state.properties[u.PropertyID]; ok {
		u.Property = &p
	}
}

func (s *MemoryStore) ListRentalUnits(ctx context.Context, filter UnitFilter) ([]model.RentalUnit, error) {
	defer s.lock()()
	var units []model.RentalUnit
	for _, u := range s.state.units {
		if filter.PropertyID != nil && u.PropertyID != *filter.PropertyID {
			continue
		}
		if filter.Status != "" && string(u.Status) != filter.Status {
			continue
		}
		if filter.ManagerID != nil {
			p, ok := s.state.properties[u.PropertyID]
			if !ok || p.AssignedManagerID == nil || *p.AssignedManagerID != *filter.ManagerID {
				continue
			}
		}
		s.hydrateUnit(&u)
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].PropertyID != units[j].PropertyID {
			return units[i].PropertyID < units[j].PropertyID
		}
		return units[i].UnitNumber < units[j].UnitNumber
	})
	return units, nil
}

func (s *MemoryStore) DeleteRentalUnit(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.state.units[id]; !ok {
		return apperror.NotFound("Rental unit not found")
	}
	delete(s.state.units, id)
	s.releaseCards(id)
	for uaID, ua := range s.state.unitAssets {
		if ua.RentalUnitID == id {
			delete(s.state.unitAssets, uaID)
		}
	}
	return nil
}

func (s *MemoryStore) CountRentalUnits(ctx context.Context, propertyID uint) (int64, error) {
	defer s.lock()()
	return s.countUnits(propertyID), nil
}

func (s *MemoryStore) countUnits(propertyID uint) int64 {
	var n int64
	for _, u := range s.state.units {
		if u.PropertyID == propertyID {
			n++
		}
	}
	return n
}

func (s *MemoryStore) ExistingUnitNumbers(ctx context.Context, propertyID uint, numbers []string, excludeID uint) ([]string, error) {
	defer s.lock()()
	wanted := toSet(numbers)
	var existing []string
	for _, u := range s.state.units {
		if u.ID != excludeID && u.PropertyID == propertyID && wanted[u.UnitNumber] {
			existing = append(existing, u.UnitNumber)
		}
	}
	sort.Strings(existing)
	return existing, nil
}

func (s *MemoryStore) TakenAccessCards(ctx context.Context, numbers []string, excludeUnitID uint) ([]string, error) {
	defer s.lock()()
	var taken []string
	for n := range toSet(numbers) {
		if owner, ok := s.state.cards[n]; ok && owner != excludeUnitID {
			taken = append(taken, n)
		}
	}
	sort.Strings(taken)
	return taken, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Assets

func (s *MemoryStore) CreateAsset(ctx context.Context, a *model.Asset) error {
	defer s.lock()()
	a.ID = s.state.id()
	stamp(&a.CreatedAt, &a.UpdatedAt)
	s.state.assets[a.ID] = *a
	return nil
}

func (s *MemoryStore) SaveAsset(ctx context.Context, a *model.Asset) error {
	defer s.lock()()
	if _, ok := s.state.assets[a.ID]; !ok {
		return apperror.NotFound("Asset not found")
	}
	stamp(nil, &a.UpdatedAt)
	s.state.assets[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAsset(ctx context.Context, id uint) (*model.Asset, error) {
	defer s.lock()()
	a, ok := s.state.assets[id]
	if !ok {
		return nil, apperror.NotFound("Asset not found")
	}
	return &a, nil
}

func (s *MemoryStore) ListAssets(ctx context.Context, filter AssetFilter) ([]model.Asset, error) {
	defer s.lock()()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var assets []model.Asset
	for _, a := range s.state.assets {
		if filter.Category != "" && string(a.Category) != filter.Category {
			continue
		}
		if filter.Status != "" && string(a.Status) != filter.Status {
			continue
		}
		serial := ""
		if a.SerialNo != nil {
			serial = *a.SerialNo
		}
		if search != "" && !containsAny(search, a.Name, a.Brand, serial) {
			continue
		}
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Name != assets[j].Name {
			return assets[i].Name < assets[j].Name
		}
		return assets[i].ID < assets[j].ID
	})
	return assets, nil
}

func (s *MemoryStore) DeleteAsset(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.state.assets[id]; !ok {
		return apperror.NotFound("Asset not found")
	}
	delete(s.state.assets, id)
	return nil
}

func (s *MemoryStore) AssetExists(ctx context.Context, name string, serialNo *string, excludeID uint) (bool, error) {
	defer s.lock()()
	for _, a := range s.state.assets {
		if a.ID == excludeID || a.Name != name {
			continue
		}
		switch {
		case serialNo == nil && a.SerialNo == nil:
			return true, nil
		case serialNo != nil && a.SerialNo != nil && *serialNo == *a.SerialNo:
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateUnitAsset(ctx context.Context, ua *model.RentalUnitAsset) error {
	defer s.lock()()
	ua.ID = s.state.id()
	stamp(&ua.CreatedAt, &ua.UpdatedAt)
	stored := *ua
	stored.Asset = nil
	s.state.unitAssets[ua.ID] = stored
	return nil
}

func (s *MemoryStore) GetUnitAsset(ctx context.Context, id uint) (*model.RentalUnitAsset, error) {
	defer s.lock()()
	ua, ok := s.state.unitAssets[id]
	if !ok {
		return nil, apperror.NotFound("Unit asset not found")
	}
	if a, ok := s.state.assets[ua.AssetID]; ok {
		ua.Asset = &a
	}
	return &ua, nil
}

func (s *MemoryStore) SaveUnitAsset(ctx context.Context, ua *model.RentalUnitAsset) error {
	defer s.lock()()
	if _, ok := s.state.unitAssets[ua.ID]; !ok {
		return apperror.NotFound("Unit asset not found")
	}
	stamp(nil, &ua.UpdatedAt)
	stored := *ua
	stored.Asset = nil
	s.state.unitAssets[ua.ID] = stored
	return nil
}

func (s *MemoryStore) ListUnitAssets(ctx context.Context, unitID uint, activeOnly bool) ([]model.RentalUnitAsset, error) {
	defer s.lock()()
	return s.sortedUnitAssets(unitID, activeOnly), nil
}

func (s *MemoryStore) sortedUnitAssets(unitID uint, activeOnly bool) []model.RentalUnitAsset {
	var out []model.RentalUnitAsset
	for _, ua := range s.state.unitAssets {
		if ua.RentalUnitID != unitID || (activeOnly && !ua.IsActive) {
			continue
		}
		if a, ok := s.state.assets[ua.AssetID]; ok {
			ua.Asset = &a
		}
		out = append(out, ua)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Import audit

func (s *MemoryStore) CreateImportBatch(ctx context.Context, b *model.ImportBatch) error {
	defer s.lock()()
	b.ID = s.state.id()
	stamp(&b.CreatedAt, &b.UpdatedAt)
	s.state.batches[b.ID] = *b
	return nil
}

func (s *MemoryStore) ListImportBatches(ctx context.Context, userID *uint, limit int) ([]model.ImportBatch, error) {
	defer s.lock()()
	var batches []model.ImportBatch
	for _, b := range s.state.batches {
		if userID != nil && b.UserID != *userID {
			continue
		}
		batches = append(batches, b)
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].ID > batches[j].ID })
	if limit > 0 && len(batches) > limit {
		batches = batches[:limit]
	}
	return batches, nil
}
