package search

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/embedder"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeIndex 固定返回预设命中；配合 documents 也能按子串匹配
type fakeIndex struct {
	hits      []vectorindex.Hit
	documents map[string]string
}

func (f *fakeIndex) Upsert(ctx context.Context, id, document string, metadata map[string]string) error {
	if f.documents == nil {
		f.documents = make(map[string]string)
	}
	f.documents[id] = document
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, text string, n int) ([]vectorindex.Hit, error) {
	if f.hits != nil {
		if len(f.hits) > n {
			return f.hits[:n], nil
		}
		return f.hits, nil
	}

	// 子串匹配模拟相似度
	var hits []vectorindex.Hit
	for id, doc := range f.documents {
		if strings.Contains(strings.ToLower(doc), strings.ToLower(text)) {
			hits = append(hits, vectorindex.Hit{ID: id, Distance: 0.1})
		}
		if len(hits) >= n {
			break
		}
	}
	return hits, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Object{},
		&model.ObjectDefinition{},
		&model.Query{},
		&model.QueryResult{},
		&model.ErrorLog{},
		&model.TimeMetric{},
	))
	return store.New(db)
}

func createObject(t *testing.T, s *store.Store, fileID string) *model.Object {
	t.Helper()
	obj := &model.Object{
		Type:      "image",
		Path:      "/pictures/" + fileID + ".png",
		Name:      fileID + ".png",
		FileID:    fileID,
		Processed: true,
	}
	require.NoError(t, s.CreateObject(obj))
	return obj
}

func TestQueryOrderingAndThreshold(t *testing.T) {
	s := newTestStore(t)
	a := createObject(t, s, "a")
	b := createObject(t, s, "b")
	c := createObject(t, s, "c")

	index := &fakeIndex{hits: []vectorindex.Hit{
		{ID: a.ID, Distance: 0.1},
		{ID: b.ID, Distance: 0.4},
		{ID: c.ID, Distance: 0.9},
	}}

	maxDistance := 0.5
	results, saved, err := NewEngine(s, index, 1.3).Query(context.Background(), "sunset", 10, &maxDistance)
	require.NoError(t, err)

	// 超过阈值的被丢弃，剩余按距离升序
	require.Len(t, results, 2)
	assert.Equal(t, a.ID, results[0].Object.ID)
	assert.Equal(t, 0.1, results[0].Distance)
	assert.Equal(t, b.ID, results[1].Object.ID)
	assert.Equal(t, 0.4, results[1].Distance)
	assert.True(t, results[0].Distance <= results[1].Distance)

	assert.Equal(t, 2, saved.ReturnedResults)
	assert.Equal(t, 0.5, saved.MaxDistance)
}

func TestQueryDefaultMaxDistance(t *testing.T) {
	s := newTestStore(t)
	a := createObject(t, s, "a")

	index := &fakeIndex{hits: []vectorindex.Hit{{ID: a.ID, Distance: 1.0}}}

	_, saved, err := NewEngine(s, index, 1.3).Query(context.Background(), "sunset", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.3, saved.MaxDistance)
	assert.Equal(t, 1, saved.ReturnedResults)
}

func TestQueryStaleHitTolerance(t *testing.T) {
	s := newTestStore(t)
	a := createObject(t, s, "a")
	b := createObject(t, s, "b")

	index := &fakeIndex{hits: []vectorindex.Hit{
		{ID: a.ID, Distance: 0.1},
		{ID: "00000000-0000-0000-0000-000000000000", Distance: 0.2, Metadata: map[string]string{"path": "/gone.png"}},
		{ID: b.ID, Distance: 0.3},
	}}

	results, _, err := NewEngine(s, index, 1.3).Query(context.Background(), "sunset", 10, nil)
	require.NoError(t, err)

	// 陈旧命中被丢弃，不影响请求
	require.Len(t, results, 2)
	assert.Equal(t, a.ID, results[0].Object.ID)
	assert.Equal(t, 0.1, results[0].Distance)
	assert.Equal(t, b.ID, results[1].Object.ID)
	assert.Equal(t, 0.3, results[1].Distance)

	var errLog model.ErrorLog
	require.NoError(t, s.DB().First(&errLog).Error)
	assert.Equal(t, model.ErrorObjectNotFoundWhileQuerying, errLog.Type)
	assert.Equal(t, "/gone.png", errLog.Metadata["path"])
}

func TestQueryPersistsHistory(t *testing.T) {
	s := newTestStore(t)
	a := createObject(t, s, "a")

	index := &fakeIndex{hits: []vectorindex.Hit{{ID: a.ID, Distance: 0.2}}}
	engine := NewEngine(s, index, 1.3)

	results, saved, err := engine.Query(context.Background(), "sunset", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 保存的查询可以回放，不再查向量索引
	q, replayed, err := engine.SavedResults(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunset", q.Query)
	require.Len(t, replayed, 1)
	assert.Equal(t, a.ID, replayed[0].Object.ID)
	assert.Equal(t, 0.2, replayed[0].Distance)

	var metric model.TimeMetric
	require.NoError(t, s.DB().Where("type = ?", model.MetricQuery).First(&metric).Error)
	assert.Equal(t, model.MetricQuery, metric.Type)
}

func TestSavedResultsUnknownID(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, &fakeIndex{}, 1.3)

	_, _, err := engine.SavedResults("11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, ErrQueryNotFound)
}

// 完整链路：建对象、写定义、生成向量后能按定义内容搜到
func TestRoundTripDiscoverability(t *testing.T) {
	s := newTestStore(t)
	obj := createObject(t, s, "rt")

	def := &model.ObjectDefinition{
		Type:     "image-description",
		Content:  "a red fox in the snow",
		ObjectID: obj.ID,
	}
	require.NoError(t, s.CreateDefinition(def))

	index := &fakeIndex{}
	definitions, err := s.DefinitionsFor(obj.ID)
	require.NoError(t, err)
	require.NoError(t, embedder.New(s, index).GenerateFor(context.Background(), obj, definitions))

	got, err := s.GetObject(obj.ID)
	require.NoError(t, err)
	require.True(t, got.GeneratedEmbeddings)

	results, _, err := NewEngine(s, index, 1.3).Query(context.Background(), "red fox", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, obj.ID, results[0].Object.ID)
	assert.LessOrEqual(t, results[0].Distance, 1.3)
}
