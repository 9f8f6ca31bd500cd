/*
Copyright 2025 Cartera Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cartera

import (
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/database"
	"github.com/carterahq/cartera/internal/cache"
	redis_db "github.com/carterahq/cartera/internal/redis-db"
)

// Cartera represents the main struct for the Cartera application.
type Cartera struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	cache      cache.Cache
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewCartera initializes a new instance of Cartera with the provided database datasource.
// It fetches the configuration and initializes the Redis client, cache, and queue.
//
// Parameters:
// - db database.IDataSource: The datasource for database operations.
//
// Returns:
// - *Cartera: A pointer to the newly created Cartera instance.
// - error: An error if any of the initialization steps fail.
func NewCartera(db database.IDataSource) (*Cartera, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	newCartera := &Cartera{datasource: db, queue: newQueue, redis: redisClient.Client(), cache: newCache}
	return newCartera, nil
}
