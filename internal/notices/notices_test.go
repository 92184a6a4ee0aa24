package notices

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/isirwatch/backend/pkg/db/models"
)

func setupNoticesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:notices_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.StateKind{},
		&models.Vec{},
		&models.RoleKind{},
		&models.Role{},
		&models.Tracked{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupNoticesTestDB(t)
	svc, err := NewService(ServiceParams{Store: NewRepository(db)})
	require.NoError(t, err)
	return svc, db
}

func seedTracked(t *testing.T, db *gorm.DB, userID uuid.UUID, desc string, vec *models.Vec) {
	t.Helper()
	require.NoError(t, db.Create(vec).Error)
	require.NoError(t, db.Create(&models.Tracked{UserID: userID, Desc: desc, VecID: vec.ID}).Error)
}

func TestDigestFormat(t *testing.T) {
	svc, db := newTestService(t)
	user := uuid.New()

	senate := 33
	link := "https://isir.justice.cz/isir/ueu/evidence_upadcu_detail.do?id=abc"
	seedTracked(t, db, user, "klient A", &models.Vec{
		Court:  "KSJIMBM",
		Number: 1234,
		Year:   2026,
		Senate: &senate,
		Link:   &link,
	})

	digest, err := svc.DigestForUser(context.Background(), user)
	require.NoError(t, err)

	assert.Contains(t, digest, digestHeader)
	assert.Contains(t, digest, " - klient A, sp. zn. KS Brno 33 INS 1234/2026\n")
	assert.Contains(t, digest, "   "+link+"\n")
}

func TestDigestBlankDescriptionAndDefaults(t *testing.T) {
	svc, db := newTestService(t)
	user := uuid.New()

	// unknown court, no senate, no link
	seedTracked(t, db, user, "", &models.Vec{Court: "XX", Number: 9, Year: 2026})

	digest, err := svc.DigestForUser(context.Background(), user)
	require.NoError(t, err)

	assert.Contains(t, digest, " - sp. zn. XX 0 INS 9/2026\n")
	assert.NotContains(t, digest, ", sp. zn.")
}

func TestDigestDrainsOnce(t *testing.T) {
	svc, db := newTestService(t)
	user := uuid.New()
	other := uuid.New()

	seedTracked(t, db, user, "klient A", &models.Vec{Court: "MSPH", Number: 77, Year: 2026})
	seedTracked(t, db, other, "klient B", &models.Vec{Court: "MSPH", Number: 78, Year: 2026})

	first, err := svc.DigestForUser(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.DigestForUser(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, second)

	// the other user's rows are untouched
	var remaining int64
	require.NoError(t, db.Model(&models.Tracked{}).Where("user_id = ?", other).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestDigestEmptyWhenNothingPending(t *testing.T) {
	svc, _ := newTestService(t)

	digest, err := svc.DigestForUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, digest)
}

func TestUserIDsWithPending(t *testing.T) {
	_, db := newTestService(t)
	repo := NewRepository(db)
	user := uuid.New()

	seedTracked(t, db, user, "a", &models.Vec{Court: "MSPH", Number: 1, Year: 2026})
	seedTracked(t, db, user, "b", &models.Vec{Court: "MSPH", Number: 2, Year: 2026})

	ids, err := repo.UserIDsWithPending(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, user, ids[0])
}

type fakePublishResult struct {
	id  string
	err error
}

func (r fakePublishResult) Get(context.Context) (string, error) { return r.id, r.err }

type fakePublisher struct {
	messages []*gcppubsub.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	return fakePublishResult{id: "1"}
}

func timeNowFixed() time.Time {
	return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
}

func TestPublishDigest(t *testing.T) {
	fake := &fakePublisher{}
	pub := &Publisher{pub: fake, now: timeNowFixed}
	user := uuid.New()

	require.NoError(t, pub.PublishDigest(context.Background(), user, "změny"))
	require.Len(t, fake.messages, 1)

	var msg DigestMessage
	require.NoError(t, json.Unmarshal(fake.messages[0].Data, &msg))
	assert.Equal(t, user, msg.UserID)
	assert.Equal(t, "změny", msg.Body)
	assert.Equal(t, user.String(), fake.messages[0].Attributes["user_id"])
}
