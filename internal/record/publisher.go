package record

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-diddht/internal/core/metrics"
	"github.com/dep2p/go-diddht/internal/util/logger"
	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
	"github.com/dep2p/go-diddht/pkg/types"
)

var log = logger.Logger("record")

// DefaultSeqCacheSize 默认序列号缓存容量
const DefaultSeqCacheSize = 1024

// ============================================================================
//                              Publisher
// ============================================================================

// Publisher 写入路径
//
// 每次写入前重新读取已存储的记录，这是序列号冲突的唯一权威判断。
// 本地缓存的最后序列号仅作提示，用于日志和 LastSeq 查询。
type Publisher struct {
	client   interfaces.DHTClient
	seqs     SeqSource
	seqCache *lru.Cache[string, uint64]
	metrics  *metrics.Metrics
}

// PublisherOption Publisher 选项
type PublisherOption func(*publisherOptions)

type publisherOptions struct {
	seqs      SeqSource
	cacheSize int
	metrics   *metrics.Metrics
}

// WithSeqSource 设置 PutNext 使用的序列号来源
func WithSeqSource(s SeqSource) PublisherOption {
	return func(o *publisherOptions) {
		o.seqs = s
	}
}

// WithSeqCacheSize 设置序列号缓存容量
func WithSeqCacheSize(n int) PublisherOption {
	return func(o *publisherOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(o *publisherOptions) {
		o.metrics = m
	}
}

// NewPublisher 创建 Publisher
func NewPublisher(client interfaces.DHTClient, opts ...PublisherOption) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("record: nil dht client")
	}
	o := publisherOptions{cacheSize: DefaultSeqCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seqs == nil {
		o.seqs = NewCounterSeqSource()
	}

	cache, err := lru.New[string, uint64](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("record: seq cache: %w", err)
	}
	return &Publisher{
		client:   client,
		seqs:     o.seqs,
		seqCache: cache,
		metrics:  o.metrics,
	}, nil
}

// Put 签名并写入 packet，返回存储键
//
// 已存储记录的序列号不小于 seq 时返回 ErrStaleWrite，不发出写入。
// 已存储但校验失败的记录视为不存在；读取时的传输错误直接返回，不写入。
func (p *Publisher) Put(ctx context.Context, packet []byte, identity crypto.PrivateKey, seq uint64) ([]byte, error) {
	if identity == nil {
		return nil, ErrNilKey
	}
	key, err := StorageKey(identity.GetPublic())
	if err != nil {
		return nil, err
	}
	id, err := did.Identifier(identity.GetPublic())
	if err != nil {
		return nil, err
	}

	if last, ok := p.LastSeq(id); ok && seq <= last {
		log.Debug("本地序列号提示写入可能过期", "id", logger.TruncateID(id, 24), "seq", seq, "last", last)
	}

	stored, err := p.current(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		p.remember(id, stored.Seq)
		if seq <= stored.Seq {
			return nil, NewRecordError("put", ErrStaleWrite, fmt.Sprintf("seq %d <= stored %d", seq, stored.Seq))
		}
	}

	if err := p.write(ctx, key, packet, identity, seq); err != nil {
		return nil, err
	}
	p.remember(id, seq)
	log.Debug("记录已写入", "id", logger.TruncateID(id, 24), "seq", seq, "size", len(packet))
	return key, nil
}

// PutNext 使用 SeqSource 分配序列号后写入，返回存储键和使用的序列号
//
// 已存储的序列号更大时（例如另一进程写入过），先把它告知支持 Observer 的来源，
// 再分配一次。
func (p *Publisher) PutNext(ctx context.Context, packet []byte, identity crypto.PrivateKey) ([]byte, uint64, error) {
	if identity == nil {
		return nil, 0, ErrNilKey
	}
	id, err := did.Identifier(identity.GetPublic())
	if err != nil {
		return nil, 0, err
	}

	seq, err := p.seqs.NextSeq(id)
	if err != nil {
		return nil, 0, err
	}
	key, err := p.Put(ctx, packet, identity, seq)
	if err == nil || !errors.Is(err, ErrStaleWrite) {
		return key, seq, err
	}

	obs, ok := p.seqs.(Observer)
	if !ok {
		return nil, 0, err
	}
	last, _ := p.seqCache.Peek(id)
	obs.Observe(id, last)
	if seq, err = p.seqs.NextSeq(id); err != nil {
		return nil, 0, err
	}
	key, err = p.Put(ctx, packet, identity, seq)
	return key, seq, err
}

// LastSeq 返回本地已知的最后序列号（仅作提示）
func (p *Publisher) LastSeq(id string) (uint64, bool) {
	seq, ok := p.seqCache.Get(id)
	if ok {
		p.metrics.CacheHit(metrics.CacheSeq)
	} else {
		p.metrics.CacheMiss(metrics.CacheSeq)
	}
	return seq, ok
}

// remember 记录已知的最大序列号
func (p *Publisher) remember(id string, seq uint64) {
	if last, ok := p.seqCache.Peek(id); ok && last >= seq {
		return
	}
	p.seqCache.Add(id, seq)
}

// current 读取并校验已存储的记录，不存在或校验失败时返回 nil
func (p *Publisher) current(ctx context.Context, key []byte) (*PutRequest, error) {
	data, err := p.client.Get(ctx, key)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, nil
		}
		return nil, NewRecordError("put", err, "read current record")
	}
	req, err := OpenKey(key, data)
	if err != nil {
		log.Warn("已存储记录校验失败，视为不存在", "key", types.KeyHex(key), "error", err)
		return nil, nil
	}
	return req, nil
}

// write 签名、序列化并写入
func (p *Publisher) write(ctx context.Context, key, packet []byte, identity crypto.PrivateKey, seq uint64) error {
	req, err := BuildPutRequest(packet, identity, seq)
	if err != nil {
		return err
	}
	envelope, err := req.Marshal()
	if err != nil {
		return err
	}
	if err := p.client.Put(ctx, key, envelope); err != nil {
		return NewRecordError("put", err, "write record")
	}
	return nil
}

// ============================================================================
//                              Retriever
// ============================================================================

// Retriever 读取路径
type Retriever struct {
	client interfaces.DHTClient
}

// NewRetriever 创建 Retriever
func NewRetriever(client interfaces.DHTClient) *Retriever {
	return &Retriever{client: client}
}

// Get 读取 id 的记录并完成身份与签名校验
//
// 无记录时返回 types.ErrNotFound；返回的 PutRequest.Payload 为已校验的报文。
func (r *Retriever) Get(ctx context.Context, id string) (*PutRequest, error) {
	key, err := StorageKeyForDID(id)
	if err != nil {
		return nil, NewRecordError("get", err, "invalid identifier")
	}
	data, err := r.client.Get(ctx, key)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, err
		}
		return nil, NewRecordError("get", err, "read record")
	}
	req, err := OpenKey(key, data)
	if err != nil {
		log.Warn("记录校验失败，已丢弃", "id", logger.TruncateID(id, 24), "error", err)
		return nil, err
	}
	return req, nil
}
