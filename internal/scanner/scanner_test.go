package scanner

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/config"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Object{},
		&model.ObjectDefinition{},
		&model.IgnoredFile{},
		&model.ErrorLog{},
		&model.TimeMetric{},
	))
	return store.New(db)
}

func testConfig(roots ...string) *config.Config {
	return &config.Config{
		Scanner: config.ScannerConfig{
			Roots:              roots,
			IgnoredDirectories: []string{"node_modules"},
			IntervalSeconds:    30,
		},
		Types: []config.ObjectType{
			{Type: "image", FileExtensions: []string{".png", ".jpg"}},
		},
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// writeBombPNG 构造 IHDR 声明超大尺寸的 PNG，只有头部
func writeBombPNG(t *testing.T, path string) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 100000) // width
	binary.BigEndian.PutUint32(ihdr[4:8], 100000) // height
	ihdr[8] = 8  // bit depth
	ihdr[9] = 6  // color type RGBA
	ihdr[10] = 0 // compression
	ihdr[11] = 0 // filter
	ihdr[12] = 0 // interlace

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], 13)
	buf.Write(length[:])

	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(chunk))
	buf.Write(crc[:])

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func countRows(t *testing.T, s *store.Store, m interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.DB().Model(m).Count(&count).Error)
	return count
}

func TestRunPassSavesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "cat.png"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0644))

	s := newTestStore(t)
	summary, err := New(testConfig(root), s).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Saved)
	assert.EqualValues(t, 1, countRows(t, s, &model.Object{}))

	var obj model.Object
	require.NoError(t, s.DB().First(&obj).Error)
	assert.Equal(t, "image", obj.Type)
	assert.Equal(t, "cat.png", obj.Name)
	assert.False(t, obj.Processed)
	assert.False(t, obj.GeneratedEmbeddings)
	assert.False(t, obj.Error)
	require.NotNil(t, obj.Metadata["resolution"])
	resolution := obj.Metadata["resolution"].(map[string]interface{})
	assert.EqualValues(t, 2, resolution["width"])
	assert.EqualValues(t, 3, resolution["height"])
}

func TestRunPassDedup(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"))
	writePNG(t, filepath.Join(root, "b.png"))

	s := newTestStore(t)
	sc := New(testConfig(root), s)

	first, err := sc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Saved)

	// 第二遍不产生新对象，全部算重复
	second, err := sc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Saved)
	assert.Equal(t, 2, second.Duplicates)
	assert.EqualValues(t, 2, countRows(t, s, &model.Object{}))
	assert.EqualValues(t, 0, countRows(t, s, &model.IgnoredFile{}))
}

func TestRunPassIgnoresInvalidImage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("not a png"), 0644))

	s := newTestStore(t)
	sc := New(testConfig(root), s)

	summary, err := sc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Saved)
	assert.Equal(t, 1, summary.Ignored)

	var ignored model.IgnoredFile
	require.NoError(t, s.DB().First(&ignored).Error)
	assert.Equal(t, model.IgnoreInvalidFile, ignored.Type)

	var errLog model.ErrorLog
	require.NoError(t, s.DB().First(&errLog).Error)
	assert.Equal(t, model.ErrorResolutionNotFound, errLog.Type)

	// 被忽略的文件后续扫描不再评估
	second, err := sc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Ignored)
	assert.Equal(t, 1, second.Duplicates)
	assert.EqualValues(t, 1, countRows(t, s, &model.IgnoredFile{}))
}

func TestRunPassDecompressionBomb(t *testing.T) {
	root := t.TempDir()
	writeBombPNG(t, filepath.Join(root, "bomb.png"))

	s := newTestStore(t)
	summary, err := New(testConfig(root), s).RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Saved)
	assert.Equal(t, 1, summary.Ignored)

	var ignored model.IgnoredFile
	require.NoError(t, s.DB().First(&ignored).Error)
	assert.Equal(t, model.IgnoreDecompressionBomb, ignored.Type)

	var errLog model.ErrorLog
	require.NoError(t, s.DB().First(&errLog).Error)
	assert.Equal(t, model.ErrorDecompressionBomb, errLog.Type)
}

func TestRunPassPrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writePNG(t, filepath.Join(nested, "hidden.png"))
	writePNG(t, filepath.Join(root, "visible.png"))

	s := newTestStore(t)
	summary, err := New(testConfig(root), s).RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)

	var obj model.Object
	require.NoError(t, s.DB().First(&obj).Error)
	assert.Equal(t, "visible.png", obj.Name)
}

func TestRunPassCancellation(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestStore(t)
	summary, err := New(testConfig(root), s).RunPass(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, summary.Saved)
}
