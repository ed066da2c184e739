package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore is an in-memory repository.Store. It keeps just enough behaviour
// (id assignment, not-found errors, range filtering, one active goal) for the
// services to be exercised without a database. Set the *Err fields to
// simulate storage failures.

type fakeStore struct {
	users    map[int64]*model.User
	items    map[int64]*model.FoodItem
	entries  []model.FoodLogEntry
	goals    map[int64]*model.NutritionGoals
	plans    map[int64]*model.MealPlan
	planItms []model.MealPlanItem
	nextID   int64

	createUserErr error
	listLogErr    error
	activeErr     error
	createGoalErr error
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[int64]*model.User),
		items: make(map[int64]*model.FoodItem),
		goals: make(map[int64]*model.NutritionGoals),
		plans: make(map[int64]*model.MealPlan),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	u.ID = f.id()
	u.CreatedAt = time.Now().UTC()
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) ListUsers(context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateFoodItem(_ context.Context, item *model.FoodItem) error {
	item.ID = f.id()
	item.CreatedAt = time.Now().UTC()
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeStore) GetFoodItemByID(_ context.Context, id int64) (*model.FoodItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("food item", id)
	}
	out := *item
	return &out, nil
}

func (f *fakeStore) ListFoodItems(context.Context) ([]model.FoodItem, error) {
	out := []model.FoodItem{}
	for _, item := range f.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListFoodItemsByUser(_ context.Context, userID int64) ([]model.FoodItem, error) {
	out := []model.FoodItem{}
	for _, item := range f.items {
		if item.CreatedByUserID != nil && *item.CreatedByUserID == userID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateFoodLogEntry(_ context.Context, e *model.FoodLogEntry) error {
	e.ID = f.id()
	e.CreatedAt = time.Now().UTC()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeStore) ListFoodLogEntriesByUser(_ context.Context, userID int64) ([]model.FoodLogEntry, error) {
	out := []model.FoodLogEntry{}
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListFoodLogEntriesByUserInRange(_ context.Context, userID int64, r repository.TimeRange) ([]model.FoodLogEntry, error) {
	out := []model.FoodLogEntry{}
	for _, e := range f.entries {
		if e.UserID == userID && !e.LoggedAt.Before(r.From) && !e.LoggedAt.After(r.To) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListLoggedFoodInRange(ctx context.Context, userID int64, r repository.TimeRange) ([]model.LoggedFood, error) {
	if f.listLogErr != nil {
		return nil, f.listLogErr
	}
	entries, _ := f.ListFoodLogEntriesByUserInRange(ctx, userID, r)
	var out []model.LoggedFood
	for _, e := range entries {
		out = append(out, model.LoggedFood{Entry: e, Food: *f.items[e.FoodItemID]})
	}
	return out, nil
}

func (f *fakeStore) CreateActiveGoals(_ context.Context, g *model.NutritionGoals) error {
	if f.createGoalErr != nil {
		return f.createGoalErr
	}
	now := time.Now().UTC()
	for _, existing := range f.goals {
		if existing.UserID == g.UserID && existing.IsActive {
			existing.IsActive = false
			existing.UpdatedAt = now
		}
	}
	g.ID = f.id()
	g.IsActive = true
	g.CreatedAt, g.UpdatedAt = now, now
	stored := *g
	f.goals[g.ID] = &stored
	return nil
}

func (f *fakeStore) GetGoalsByID(_ context.Context, id int64) (*model.NutritionGoals, error) {
	g, ok := f.goals[id]
	if !ok {
		return nil, apperror.NotFound("nutrition goals", id)
	}
	out := *g
	return &out, nil
}

func (f *fakeStore) GetActiveGoals(_ context.Context, userID int64) (*model.NutritionGoals, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	for _, g := range f.goals {
		if g.UserID == userID && g.IsActive {
			out := *g
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateGoals(_ context.Context, g *model.NutritionGoals) error {
	existing, ok := f.goals[g.ID]
	if !ok {
		return apperror.NotFound("nutrition goals", g.ID)
	}
	g.UpdatedAt = time.Now().UTC()
	existing.DailyCalories = g.DailyCalories
	existing.DailyProtein = g.DailyProtein
	existing.DailyCarbs = g.DailyCarbs
	existing.DailyFat = g.DailyFat
	existing.UpdatedAt = g.UpdatedAt
	return nil
}

func (f *fakeStore) ListGoalsByUser(_ context.Context, userID int64) ([]model.NutritionGoals, error) {
	out := []model.NutritionGoals{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateMealPlan(_ context.Context, p *model.MealPlan) error {
	p.ID = f.id()
	p.CreatedAt = time.Now().UTC()
	stored := *p
	f.plans[p.ID] = &stored
	return nil
}

func (f *fakeStore) GetMealPlanByID(_ context.Context, id int64) (*model.MealPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, apperror.NotFound("meal plan", id)
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) ListMealPlansByUser(_ context.Context, userID int64) ([]model.MealPlan, error) {
	out := []model.MealPlan{}
	for _, p := range f.plans {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlannedDate.Before(out[j].PlannedDate.Time) })
	return out, nil
}

func (f *fakeStore) ListMealPlansByUserInRange(ctx context.Context, userID int64, from, to model.Date) ([]model.MealPlan, error) {
	all, _ := f.ListMealPlansByUser(ctx, userID)
	out := []model.MealPlan{}
	for _, p := range all {
		if !p.PlannedDate.Before(from.Time) && !p.PlannedDate.After(to.Time) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMealPlanItem(_ context.Context, item *model.MealPlanItem) error {
	item.ID = f.id()
	item.CreatedAt = time.Now().UTC()
	f.planItms = append(f.planItms, *item)
	return nil
}

func (f *fakeStore) ListMealPlanItemsByPlan(_ context.Context, planID int64) ([]model.MealPlanItem, error) {
	out := []model.MealPlanItem{}
	for _, item := range f.planItms {
		if item.MealPlanID == planID {
			out = append(out, item)
		}
	}
	return out, nil
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f64(v float64) *float64 { return &v }

func seedUser(t *testing.T, store *fakeStore, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: "Seed"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u
}

func seedFood(t *testing.T, store *fakeStore, servingSize float64, m model.Macros) *model.FoodItem {
	t.Helper()
	item := &model.FoodItem{
		Name:               "Food",
		ServingSize:        servingSize,
		ServingUnit:        "g",
		CaloriesPerServing: m.Calories,
		ProteinPerServing:  m.Protein,
		CarbsPerServing:    m.Carbs,
		FatPerServing:      m.Fat,
	}
	if err := store.CreateFoodItem(context.Background(), item); err != nil {
		t.Fatalf("seeding food: %v", err)
	}
	return item
}

func seedEntry(t *testing.T, store *fakeStore, userID, foodID int64, servings float64, at time.Time) {
	t.Helper()
	e := &model.FoodLogEntry{UserID: userID, FoodItemID: foodID, ServingAmount: servings, MealType: model.MealLunch, LoggedAt: at}
	if err := store.CreateFoodLogEntry(context.Background(), e); err != nil {
		t.Fatalf("seeding entry: %v", err)
	}
}

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
