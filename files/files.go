package files

import (
	"context"
	"creativehub/bizerror"
	"creativehub/client/s3"
	"creativehub/idgen"
	"creativehub/persistence"
	"creativehub/session"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	otgorm "github.com/smacker/opentracing-gorm"
)

var idWorker = idgen.NewWorker()

type FileRecord struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	UUID        string          `json:"uuid" gorm:"unique_index;size:36"`
	Name        string          `json:"name"`
	ContentType string          `json:"contentType"`
	Size        int64           `json:"size"`
	ObjectKey   string          `json:"-"`
	OwnerID     types.ID        `json:"ownerId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *FileRecord) TableName() string {
	return "files"
}

type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Resolver looks up uploaded files, unknown uuids are absent from the result.
type Resolver interface {
	LoadByUUIDs(ctx context.Context, uuids []string) (map[string]FileRecord, error)
}

type ManagerTraits interface {
	Resolver
	Create(ctx context.Context, u *Upload, s *session.Session) (*FileRecord, error)
	Open(ctx context.Context, uuid string, s *session.Session) (*FileRecord, io.ReadCloser, error)
}

type Manager struct {
	dataSource *persistence.DataSourceManager
	storage    s3.ObjectStorage
}

func NewManager(ds *persistence.DataSourceManager, storage s3.ObjectStorage) *Manager {
	return &Manager{dataSource: ds, storage: storage}
}

func (m *Manager) db(ctx context.Context) *gorm.DB {
	return otgorm.SetSpanToGorm(ctx, m.dataSource.GormDB())
}

// Create puts the content into object storage first, a record is only written for stored objects.
func (m *Manager) Create(ctx context.Context, u *Upload, s *session.Session) (*FileRecord, error) {
	if !s.Authenticated() {
		return nil, bizerror.ErrUnauthenticated
	}
	record := &FileRecord{
		ID:          idgen.NextID(idWorker),
		UUID:        uuid.New().String(),
		Name:        path.Base(u.Name),
		ContentType: u.ContentType,
		Size:        u.Size,
		OwnerID:     s.Identity.ID,
		CreateTime:  types.CurrentTimestamp(),
	}
	record.ObjectKey = ObjectKey(record)

	var opts []oss.Option
	if u.ContentType != "" {
		opts = append(opts, oss.ContentType(u.ContentType))
	}
	if err := m.storage.PutObject(ctx, record.ObjectKey, u.Content, opts...); err != nil {
		return nil, err
	}
	if err := m.db(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (m *Manager) Open(ctx context.Context, uuid string, s *session.Session) (*FileRecord, io.ReadCloser, error) {
	record := FileRecord{}
	if err := m.db(ctx).Where(&FileRecord{UUID: uuid}).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	r, err := m.storage.GetObject(ctx, record.ObjectKey)
	if err != nil {
		if s3.IsNoSuchKey(err) {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	return &record, r, nil
}

func (m *Manager) LoadByUUIDs(ctx context.Context, uuids []string) (map[string]FileRecord, error) {
	found := map[string]FileRecord{}
	if len(uuids) == 0 {
		return found, nil
	}
	var records []FileRecord
	if err := m.db(ctx).Where("uuid IN (?)", uuids).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		found[r.UUID] = r
	}
	return found, nil
}

// ObjectKey is files/<owner>/<uuid><ext>.
func ObjectKey(r *FileRecord) string {
	return "files/" + r.OwnerID.String() + "/" + r.UUID + strings.ToLower(path.Ext(r.Name))
}
