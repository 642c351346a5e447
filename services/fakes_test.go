package services

import (
	"context"
	"sync"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They mirror the guard
// semantics of the Mongo implementations closely enough for service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now().UTC()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.PasswordResetToken != nil && *user.PasswordResetToken == token {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.GamingStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Stats = stats
	return nil
}

func (r *fakeUserRepo) SetTeam(ctx context.Context, id primitive.ObjectID, teamID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.TeamID = teamID
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int64) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[primitive.ObjectID]*models.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[primitive.ObjectID]*models.Wallet)}
}

func (r *fakeWalletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wallet.ID.IsZero() {
		wallet.ID = primitive.NewObjectID()
	}
	if wallet.DailyDonationLimit == 0 {
		wallet.DailyDonationLimit = models.DefaultDailyDonationLimit
	}
	copied := *wallet
	r.wallets[wallet.UserID] = &copied
	return nil
}

func (r *fakeWalletRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Credit(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	wallet.CurrentBalance += amount
	wallet.LifetimeEarned += amount
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Debit(ctx context.Context, userID primitive.ObjectID, amount int64, day string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	if wallet.DonationDay != day {
		wallet.DonationDay = day
		wallet.DonatedToday = 0
	}
	if wallet.CurrentBalance < amount {
		return nil, repositories.ErrInsufficientBalance
	}
	if wallet.DonatedToday+amount > wallet.DailyDonationLimit {
		return nil, repositories.ErrDailyLimitExceeded
	}
	wallet.CurrentBalance -= amount
	wallet.LifetimeDonated += amount
	wallet.DonatedToday += amount
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Refund(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	wallet.CurrentBalance += amount
	wallet.LifetimeDonated -= amount
	wallet.DonatedToday -= amount
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Adjust(ctx context.Context, userID primitive.ObjectID, delta int64) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	if delta < 0 && wallet.CurrentBalance+delta < 0 {
		return nil, repositories.ErrInsufficientBalance
	}
	wallet.CurrentBalance += delta
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) SetDailyLimit(ctx context.Context, userID primitive.ObjectID, limit int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	wallet.DailyDonationLimit = limit
	return nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions []models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *fakeTransactionRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			list = append(list, tx)
		}
	}
	return list, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*models.GameSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*models.GameSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.GameSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	session.CreatedAt = time.Now().UTC()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) MarkConverted(ctx context.Context, id primitive.ObjectID, credits int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if session.Converted {
		return repositories.ErrSessionAlreadyConverted
	}
	session.Converted = true
	session.CreditsAwarded = credits
	return nil
}

func (r *fakeSessionRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.GameSession, 0)
	for _, session := range r.sessions {
		if session.UserID == userID {
			list = append(list, *session)
		}
	}
	return list, nil
}

type fakeModeRepo struct {
	mu    sync.Mutex
	modes map[primitive.ObjectID]*models.GameMode
}

func newFakeModeRepo() *fakeModeRepo {
	return &fakeModeRepo{modes: make(map[primitive.ObjectID]*models.GameMode)}
}

func (r *fakeModeRepo) Create(ctx context.Context, mode *models.GameMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.modes {
		if existing.Name == mode.Name {
			return repositories.ErrModeNameConflict
		}
	}
	if mode.ID.IsZero() {
		mode.ID = primitive.NewObjectID()
	}
	copied := *mode
	r.modes[mode.ID] = &copied
	return nil
}

func (r *fakeModeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mode, ok := r.modes[id]
	if !ok {
		return nil, repositories.ErrModeNotFound
	}
	copied := *mode
	return &copied, nil
}

func (r *fakeModeRepo) GetByName(ctx context.Context, name string) (*models.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mode := range r.modes {
		if mode.Name == name {
			copied := *mode
			return &copied, nil
		}
	}
	return nil, repositories.ErrModeNotFound
}

func (r *fakeModeRepo) Update(ctx context.Context, mode *models.GameMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modes[mode.ID]; !ok {
		return repositories.ErrModeNotFound
	}
	copied := *mode
	r.modes[mode.ID] = &copied
	return nil
}

func (r *fakeModeRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mode, ok := r.modes[id]
	if !ok {
		return repositories.ErrModeNotFound
	}
	mode.Active = active
	return nil
}

func (r *fakeModeRepo) List(ctx context.Context) ([]models.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.GameMode, 0, len(r.modes))
	for _, mode := range r.modes {
		list = append(list, *mode)
	}
	return list, nil
}

func (r *fakeModeRepo) ListActive(ctx context.Context) ([]models.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.GameMode, 0)
	for _, mode := range r.modes {
		if mode.Active {
			list = append(list, *mode)
		}
	}
	return list, nil
}

func (r *fakeModeRepo) ListScheduled(ctx context.Context) ([]models.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.GameMode, 0)
	for _, mode := range r.modes {
		if mode.StartsAt != nil || mode.EndsAt != nil {
			list = append(list, *mode)
		}
	}
	return list, nil
}

type fakePaymentRepo struct {
	mu      sync.Mutex
	intents map[string]*models.PaymentIntent
	events  map[string]bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		intents: make(map[string]*models.PaymentIntent),
		events:  make(map[string]bool),
	}
}

func (r *fakePaymentRepo) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if intent.ID.IsZero() {
		intent.ID = primitive.NewObjectID()
	}
	copied := *intent
	r.intents[intent.ProviderIntentID] = &copied
	return nil
}

func (r *fakePaymentRepo) GetIntentByProviderID(ctx context.Context, providerIntentID string) (*models.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, ok := r.intents[providerIntentID]
	if !ok {
		return nil, repositories.ErrPaymentIntentNotFound
	}
	copied := *intent
	return &copied, nil
}

func (r *fakePaymentRepo) UpdateIntentStatus(ctx context.Context, providerIntentID string, status models.PaymentStatus, failureReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, ok := r.intents[providerIntentID]
	if !ok {
		return repositories.ErrPaymentIntentNotFound
	}
	intent.Status = status
	intent.FailureReason = failureReason
	return nil
}

func (r *fakePaymentRepo) RecordEvent(ctx context.Context, event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events[event.ProviderEventID] {
		return repositories.ErrWebhookEventDuplicate
	}
	r.events[event.ProviderEventID] = true
	return nil
}

type fakeTeamRepo struct {
	mu      sync.Mutex
	teams   map[primitive.ObjectID]*models.GlobalTeam
	members map[primitive.ObjectID][]models.TeamMember
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   make(map[primitive.ObjectID]*models.GlobalTeam),
		members: make(map[primitive.ObjectID][]models.TeamMember),
	}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.GlobalTeam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	team.CreatedAt = time.Now().UTC()
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GlobalTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.GlobalTeam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) AdjustMembers(ctx context.Context, id primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.MemberCount += delta
	return nil
}

func (r *fakeTeamRepo) AddScore(ctx context.Context, id primitive.ObjectID, points int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.TotalScore += points
	return nil
}

func (r *fakeTeamRepo) Leaderboard(ctx context.Context, limit int64) ([]models.GlobalTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.GlobalTeam, 0, len(r.teams))
	for _, team := range r.teams {
		list = append(list, *team)
	}
	return list, nil
}

func (r *fakeTeamRepo) AddMember(ctx context.Context, member *models.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.JoinedAt = time.Now().UTC()
	r.members[member.TeamID] = append(r.members[member.TeamID], *member)
	return nil
}

func (r *fakeTeamRepo) GetMember(ctx context.Context, teamID, userID primitive.ObjectID) (*models.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.members[teamID] {
		if member.UserID == userID {
			copied := member
			return &copied, nil
		}
	}
	return nil, repositories.ErrMembershipNotFound
}

func (r *fakeTeamRepo) RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.members[teamID]
	for i, member := range members {
		if member.UserID == userID {
			r.members[teamID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMembershipNotFound
}

func (r *fakeTeamRepo) AddContribution(ctx context.Context, teamID, userID primitive.ObjectID, points int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.members[teamID]
	for i := range members {
		if members[i].UserID == userID {
			members[i].Contribution += points
			return nil
		}
	}
	return repositories.ErrMembershipNotFound
}

func (r *fakeTeamRepo) ListMembers(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TeamMember(nil), r.members[teamID]...), nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[primitive.ObjectID]*models.TeamTournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[primitive.ObjectID]*models.TeamTournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.TeamTournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.CreatedAt = time.Now().UTC()
	copied := *t
	copied.Standings = append([]models.TournamentStanding(nil), t.Standings...)
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	copied.Standings = append([]models.TournamentStanding(nil), t.Standings...)
	return &copied, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.TeamTournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	copied.Standings = append([]models.TournamentStanding(nil), t.Standings...)
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, status *models.TournamentStatus, limit, offset int64) ([]models.TeamTournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.TeamTournament, 0)
	for _, t := range r.tournaments {
		if status == nil || t.Status == *status {
			list = append(list, *t)
		}
	}
	return list, nil
}

func (r *fakeTournamentRepo) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.TeamTournament, error) {
	return r.List(ctx, &status, 0, 0)
}

type fakeAchievementRepo struct {
	mu       sync.Mutex
	defs     map[primitive.ObjectID]*models.Achievement
	progress map[primitive.ObjectID]map[primitive.ObjectID]*models.UserAchievement
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{
		defs:     make(map[primitive.ObjectID]*models.Achievement),
		progress: make(map[primitive.ObjectID]map[primitive.ObjectID]*models.UserAchievement),
	}
}

func (r *fakeAchievementRepo) Create(ctx context.Context, a *models.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.defs {
		if existing.Code == a.Code {
			return repositories.ErrAchievementCodeConflict
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = time.Now().UTC()
	copied := *a
	r.defs[a.ID] = &copied
	return nil
}

func (r *fakeAchievementRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.defs[id]
	if !ok {
		return nil, repositories.ErrAchievementNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAchievementRepo) List(ctx context.Context) ([]models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Achievement, 0, len(r.defs))
	for _, a := range r.defs {
		list = append(list, *a)
	}
	return list, nil
}

func (r *fakeAchievementRepo) GetUserAchievement(ctx context.Context, userID, achievementID primitive.ObjectID) (*models.UserAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ua, ok := r.progress[userID][achievementID]
	if !ok {
		return nil, repositories.ErrUserAchievementNotFound
	}
	copied := *ua
	return &copied, nil
}

func (r *fakeAchievementRepo) UpsertProgress(ctx context.Context, ua *models.UserAchievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress[ua.UserID] == nil {
		r.progress[ua.UserID] = make(map[primitive.ObjectID]*models.UserAchievement)
	}
	if existing, ok := r.progress[ua.UserID][ua.AchievementID]; ok {
		// The claimed flag survives progress rewrites.
		ua.Claimed = existing.Claimed
		ua.ClaimedAt = existing.ClaimedAt
	}
	copied := *ua
	r.progress[ua.UserID][ua.AchievementID] = &copied
	return nil
}

func (r *fakeAchievementRepo) MarkClaimed(ctx context.Context, userID, achievementID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ua, ok := r.progress[userID][achievementID]
	if !ok {
		return repositories.ErrUserAchievementNotFound
	}
	if ua.Claimed {
		return repositories.ErrAchievementClaimed
	}
	if !ua.Completed {
		return repositories.ErrUserAchievementNotFound
	}
	now := time.Now().UTC()
	ua.Claimed = true
	ua.ClaimedAt = &now
	return nil
}

func (r *fakeAchievementRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.UserAchievement, 0)
	for _, ua := range r.progress[userID] {
		list = append(list, *ua)
	}
	return list, nil
}

type fakeEvaluator struct {
	mu    sync.Mutex
	calls []primitive.ObjectID
}

func (e *fakeEvaluator) EvaluateUser(ctx context.Context, user *models.User) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, user.ID)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []broadcastCall
}

type broadcastCall struct {
	room    string
	message interface{}
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, broadcastCall{room: roomID, message: message})
}

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations map[primitive.ObjectID]*models.Donation
	createErr error
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: make(map[primitive.ObjectID]*models.Donation)}
}

func (r *fakeDonationRepo) Create(ctx context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	donation.CreatedAt = time.Now().UTC()
	copied := *donation
	r.donations[donation.ID] = &copied
	return nil
}

func (r *fakeDonationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	donation, ok := r.donations[id]
	if !ok {
		return nil, repositories.ErrDonationNotFound
	}
	copied := *donation
	return &copied, nil
}

func (r *fakeDonationRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Donation, 0)
	for _, donation := range r.donations {
		if donation.UserID == userID {
			list = append(list, *donation)
		}
	}
	return list, nil
}

func (r *fakeDonationRepo) ListByOnlus(ctx context.Context, onlusID primitive.ObjectID, limit, offset int64) ([]models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Donation, 0)
	for _, donation := range r.donations {
		if donation.OnlusID == onlusID {
			list = append(list, *donation)
		}
	}
	return list, nil
}

func (r *fakeDonationRepo) Totals(ctx context.Context, from, to time.Time) (*repositories.DonationTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &repositories.DonationTotals{}
	donors := make(map[primitive.ObjectID]bool)
	for _, donation := range r.donations {
		totals.Count++
		totals.TotalAmount += donation.Amount
		donors[donation.UserID] = true
	}
	totals.UniqueDonors = int64(len(donors))
	if totals.Count > 0 {
		totals.Average = float64(totals.TotalAmount) / float64(totals.Count)
	}
	return totals, nil
}

func (r *fakeDonationRepo) OnlusBreakdown(ctx context.Context, from, to time.Time) ([]repositories.OnlusBreakdownRow, error) {
	return nil, nil
}

func (r *fakeDonationRepo) DailyVolume(ctx context.Context, from, to time.Time) ([]repositories.DailyVolumeRow, error) {
	return nil, nil
}

type fakeOnlusRepo struct {
	mu             sync.Mutex
	orgs           map[primitive.ObjectID]*models.OnlusOrganization
	addDonationErr error
}

func newFakeOnlusRepo() *fakeOnlusRepo {
	return &fakeOnlusRepo{orgs: make(map[primitive.ObjectID]*models.OnlusOrganization)}
}

func (r *fakeOnlusRepo) Create(ctx context.Context, org *models.OnlusOrganization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOnlusRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OnlusOrganization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return nil, repositories.ErrOnlusNotFound
	}
	copied := *org
	return &copied, nil
}

func (r *fakeOnlusRepo) Update(ctx context.Context, org *models.OnlusOrganization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return repositories.ErrOnlusNotFound
	}
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOnlusRepo) AddDonation(ctx context.Context, id primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addDonationErr != nil {
		return r.addDonationErr
	}
	org, ok := r.orgs[id]
	if !ok {
		return repositories.ErrOnlusNotFound
	}
	org.TotalReceived += amount
	org.DonationsCount++
	return nil
}

func (r *fakeOnlusRepo) SetCompliance(ctx context.Context, id primitive.ObjectID, status models.ComplianceStatus, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return repositories.ErrOnlusNotFound
	}
	org.Compliance = status
	org.ComplianceScore = score
	return nil
}

func (r *fakeOnlusRepo) List(ctx context.Context, onlyActive bool, limit, offset int64) ([]models.OnlusOrganization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.OnlusOrganization, 0)
	for _, org := range r.orgs {
		if onlyActive && !org.Active {
			continue
		}
		list = append(list, *org)
	}
	return list, nil
}
