package xmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// =============================================================================
// 内部接口定义 - 用于依赖注入和测试
// =============================================================================

// collectionOperations 定义写入所需的集合级别操作接口。
// *mongo.Collection 实现此接口。
type collectionOperations interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	Name() string
}

// =============================================================================
// 集合适配器 - 将 *mongo.Collection 适配为 collectionOperations
// =============================================================================

// collectionAdapter 将 *mongo.Collection 适配为 collectionOperations 接口。
type collectionAdapter struct {
	coll *mongo.Collection
}

func (a *collectionAdapter) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	return a.coll.InsertOne(ctx, document, opts...)
}

func (a *collectionAdapter) Name() string {
	return a.coll.Name()
}

// adaptCollection 将 *mongo.Collection 适配为 collectionOperations 接口。
func adaptCollection(coll *mongo.Collection) collectionOperations {
	if coll == nil {
		return nil
	}
	return &collectionAdapter{coll: coll}
}
