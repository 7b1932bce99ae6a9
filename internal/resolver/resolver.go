package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/dep2p/go-diddht/internal/core/metrics"
	"github.com/dep2p/go-diddht/internal/record"
	"github.com/dep2p/go-diddht/internal/util/logger"
	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/did/dnspacket"
	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
	"github.com/dep2p/go-diddht/pkg/types"
)

var log = logger.Logger("resolver")

// Codec 文档编解码
//
// *dnspacket.Codec 实现此接口。
type Codec interface {
	Encode(doc *did.Document) ([]byte, error)
	Decode(id string, data []byte) (*did.Document, error)
}

// Config 解析器配置
type Config struct {
	// CacheEnabled 是否缓存解析结果
	CacheEnabled bool

	// CacheSize 文档缓存条目上限
	CacheSize int

	// CacheTTL 文档缓存有效期
	CacheTTL time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		CacheEnabled: true,
		CacheSize:    256,
		CacheTTL:     5 * time.Minute,
	}
}

// Resolver 文档发布与解析
type Resolver struct {
	codec     Codec
	publisher *record.Publisher
	retriever *record.Retriever
	metrics   *metrics.Metrics

	cache *expirable.LRU[string, *did.Document]
	group singleflight.Group
}

var _ interfaces.Resolver = (*Resolver)(nil)

// New 创建解析器
//
// m 可为 nil。
func New(cfg Config, codec Codec, pub *record.Publisher, ret *record.Retriever, m *metrics.Metrics) (*Resolver, error) {
	if codec == nil || pub == nil || ret == nil {
		return nil, errors.New("resolver: codec, publisher and retriever are required")
	}
	r := &Resolver{
		codec:     codec,
		publisher: pub,
		retriever: ret,
		metrics:   m,
	}
	if cfg.CacheEnabled {
		if cfg.CacheSize < 1 {
			return nil, fmt.Errorf("resolver: invalid cache size %d", cfg.CacheSize)
		}
		r.cache = expirable.NewLRU[string, *did.Document](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return r, nil
}

// ============================================================================
//                              发布
// ============================================================================

// Publish 编码、签名并发布文档
//
// 文档标识符必须由 identity 的公钥派生。seq 为 0 时由 Publisher 的序列号源分配。
func (r *Resolver) Publish(ctx context.Context, doc *did.Document, identity crypto.PrivateKey, seq uint64) (*interfaces.PublishResult, error) {
	res, err := r.publish(ctx, doc, identity, seq)
	r.metrics.ObservePublish(publishResult(err))
	return res, err
}

func (r *Resolver) publish(ctx context.Context, doc *did.Document, identity crypto.PrivateKey, seq uint64) (*interfaces.PublishResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", did.ErrInvalidDocument)
	}
	if identity == nil {
		return nil, record.ErrNilKey
	}
	id, err := did.Identifier(identity.GetPublic())
	if err != nil {
		return nil, err
	}
	if id != doc.ID {
		return nil, record.NewRecordError("publish", record.ErrIdentityMismatch, "document id not derived from identity key")
	}

	packet, err := r.codec.Encode(doc)
	if err != nil {
		return nil, err
	}
	r.metrics.ObservePacketSize(len(packet))

	var key []byte
	if seq == 0 {
		key, seq, err = r.publisher.PutNext(ctx, packet, identity)
	} else {
		key, err = r.publisher.Put(ctx, packet, identity, seq)
	}
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Add(id, doc.Clone())
	}
	log.Info("文档已发布", "id", logger.TruncateID(id, 24), "seq", seq, "size", len(packet))
	return &interfaces.PublishResult{ID: id, Key: key, Seq: seq, Size: len(packet)}, nil
}

// ============================================================================
//                              解析
// ============================================================================

// Resolve 按标识符读取、校验并解码文档
//
// 无记录时返回 types.ErrNotFound。返回的文档是副本，调用方可以修改。
func (r *Resolver) Resolve(ctx context.Context, id string) (*did.Document, error) {
	if !did.IsIdentifier(id) {
		r.metrics.ObserveResolve(metrics.ResultInvalid)
		return nil, fmt.Errorf("%w: %q", did.ErrInvalidIdentifier, id)
	}

	if r.cache != nil {
		if doc, ok := r.cache.Get(id); ok {
			r.metrics.CacheHit(metrics.CacheDocument)
			r.metrics.ObserveResolve(metrics.ResultOK)
			return doc.Clone(), nil
		}
		r.metrics.CacheMiss(metrics.CacheDocument)
	}

	v, err, shared := r.group.Do(id, func() (any, error) {
		return r.fetch(ctx, id)
	})
	r.metrics.ObserveResolve(resolveResult(err))
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("合并并发解析", "id", logger.TruncateID(id, 24))
	}
	return v.(*did.Document).Clone(), nil
}

// fetch 读取并解码，成功时写入缓存
func (r *Resolver) fetch(ctx context.Context, id string) (*did.Document, error) {
	req, err := r.retriever.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := r.codec.Decode(id, req.Payload)
	if err != nil {
		log.Warn("文档解码失败", "id", logger.TruncateID(id, 24), "seq", req.Seq, "error", err)
		return nil, err
	}
	if r.cache != nil {
		r.cache.Add(id, doc)
	}
	log.Debug("文档已解析", "id", logger.TruncateID(id, 24), "seq", req.Seq)
	return doc, nil
}

// Invalidate 移除缓存的文档
func (r *Resolver) Invalidate(id string) {
	if r.cache != nil {
		r.cache.Remove(id)
	}
}

// CacheLen 返回缓存的文档数量
func (r *Resolver) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

// ============================================================================
//                              指标结果
// ============================================================================

func publishResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, record.ErrStaleWrite):
		return metrics.ResultStale
	case errors.Is(err, dnspacket.ErrMalformedRecord), errors.Is(err, did.ErrInvalidDocument):
		return metrics.ResultMalformed
	case errors.Is(err, record.ErrIdentityMismatch):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

func resolveResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case types.IsNotFound(err):
		return metrics.ResultNotFound
	case errors.Is(err, dnspacket.ErrMalformedRecord), errors.Is(err, record.ErrMalformedEnvelope):
		return metrics.ResultMalformed
	case record.IsAuthFailure(err):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
