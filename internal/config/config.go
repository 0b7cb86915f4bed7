// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/spf13/viper"
)

// The following keys can be access from the root configuration.
// Plugins are resonsible for defining their own keys using the Prefix interface
var (
	Lang                        RootKey = ark("lang")
	LogLevel                    RootKey = ark("log.level")
	LogColor                    RootKey = ark("log.color")
	LogTimeFormat               RootKey = ark("log.timeFormat")
	LogUTC                      RootKey = ark("log.utc")
	DebugPort                   RootKey = ark("debug.port")
	HTTPAddress                 RootKey = ark("http.address")
	HTTPPort                    RootKey = ark("http.port")
	HTTPReadTimeout             RootKey = ark("http.readTimeout")
	HTTPWriteTimeout            RootKey = ark("http.writeTimeout")
	HTTPShutdownTimeout         RootKey = ark("http.shutdownTimeout")
	HTTPTLSEnabled              RootKey = ark("http.tls.enabled")
	HTTPTLSClientAuth           RootKey = ark("http.tls.clientAuth")
	HTTPTLSCAFile               RootKey = ark("http.tls.caFile")
	HTTPTLSCertFile             RootKey = ark("http.tls.certFile")
	HTTPTLSKeyFile              RootKey = ark("http.tls.keyFile")
	CorsEnabled                 RootKey = ark("cors.enabled")
	CorsAllowedOrigins          RootKey = ark("cors.origins")
	CorsAllowedMethods          RootKey = ark("cors.methods")
	CorsAllowedHeaders          RootKey = ark("cors.headers")
	CorsAllowCredentials        RootKey = ark("cors.credentials")
	CorsMaxAge                  RootKey = ark("cors.maxAge")
	CorsDebug                   RootKey = ark("cors.debug")
	APIRequestTimeout           RootKey = ark("api.requestTimeout")
	APIDefaultLimit             RootKey = ark("api.defaultLimit")
	APIMaxLimit                 RootKey = ark("api.maxLimit")
	MetricsEnabled              RootKey = ark("metrics.enabled")
	MetricsAddress              RootKey = ark("metrics.address")
	MetricsPort                 RootKey = ark("metrics.port")
	MetricsPath                 RootKey = ark("metrics.path")
	Database                    RootKey = ark("database")
	DatabaseType                RootKey = ark("database.type")
	Assets                      RootKey = ark("assets")
	AssetsType                  RootKey = ark("assets.type")
	BufferRetryInitDelay        RootKey = ark("buffer.retry.initialDelay")
	BufferRetryMaxDelay         RootKey = ark("buffer.retry.maxDelay")
	BufferRetryFactor           RootKey = ark("buffer.retry.factor")
	BufferRetryMaxAttempts      RootKey = ark("buffer.retry.maxAttempts")
	BufferCacheSize             RootKey = ark("buffer.cache.size")
	BufferCacheTTL              RootKey = ark("buffer.cache.ttl")
	BufferIdentityStrict        RootKey = ark("buffer.identity.strict")
	EventsBufferLength          RootKey = ark("events.bufferLength")
	EventsRedisEnabled          RootKey = ark("events.redis.enabled")
	EventsRedisURL              RootKey = ark("events.redis.url")
	EventsRedisChannel          RootKey = ark("events.redis.channel")
	EventsKinesisEnabled        RootKey = ark("events.kinesis.enabled")
	EventsKinesisStream         RootKey = ark("events.kinesis.stream")
	WebsocketEnabled            RootKey = ark("websocket.enabled")
	WebsocketPath               RootKey = ark("websocket.path")
	WebsocketReadBufferSize     RootKey = ark("websocket.readBufferSize")
	WebsocketWriteBufferSize    RootKey = ark("websocket.writeBufferSize")
	WebsocketHeartbeatInterval  RootKey = ark("websocket.heartbeatInterval")
	WebsocketBroadcastQueueSize RootKey = ark("websocket.queueSize")
	ReplenisherEnabled          RootKey = ark("replenisher.enabled")
	ReplenisherAuthority        RootKey = ark("replenisher.authority")
	ReplenisherSymbol           RootKey = ark("replenisher.symbol")
	ReplenisherDefaultFee       RootKey = ark("replenisher.defaultSellerFeeBasisPoints")
	ReplenisherQueueLength      RootKey = ark("replenisher.queueLength")
	ReplenisherInflightTimeout  RootKey = ark("replenisher.inflightTimeout")
)

// Prefix represents the global configuration, at a nested point in
// the config hierarchy. This allows plugins to define their
// own keys.
//
// Note that all values are GLOBAL so this cannot be used for per-instance
// customization. Rather for global initialization of plugins.
type Prefix interface {
	AddKnownKey(key string, defValue ...interface{})
	SubPrefix(suffix string) Prefix
	Set(key string, value interface{})
	Resolve(key string) string

	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetByteSize(key string) int64
	GetStringSlice(key string) []string
	GetStringMap(key string) map[string]interface{}
	UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error
	Get(key string) interface{}
}

// RootKey key are the known configuration keys
type RootKey string

// Reset clears all configuration and re-applies the defaults
func Reset() {
	viper.Reset()

	// Set defaults
	viper.SetDefault(string(Lang), "en")
	viper.SetDefault(string(LogLevel), "info")
	viper.SetDefault(string(LogColor), true)
	viper.SetDefault(string(LogTimeFormat), "2006-01-02T15:04:05.000Z07:00")
	viper.SetDefault(string(LogUTC), false)
	viper.SetDefault(string(DebugPort), -1)
	viper.SetDefault(string(HTTPAddress), "127.0.0.1")
	viper.SetDefault(string(HTTPPort), 5000)
	viper.SetDefault(string(HTTPReadTimeout), "15s")
	viper.SetDefault(string(HTTPWriteTimeout), "15s")
	viper.SetDefault(string(HTTPShutdownTimeout), "10s")
	viper.SetDefault(string(CorsEnabled), true)
	viper.SetDefault(string(CorsAllowedOrigins), []string{"*"})
	viper.SetDefault(string(CorsAllowedMethods), []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete})
	viper.SetDefault(string(CorsAllowedHeaders), []string{"*"})
	viper.SetDefault(string(CorsAllowCredentials), true)
	viper.SetDefault(string(CorsMaxAge), 600)
	viper.SetDefault(string(APIRequestTimeout), "120s")
	viper.SetDefault(string(APIDefaultLimit), 25)
	viper.SetDefault(string(APIMaxLimit), 1000)
	viper.SetDefault(string(MetricsEnabled), true)
	viper.SetDefault(string(MetricsAddress), "127.0.0.1")
	viper.SetDefault(string(MetricsPort), 6000)
	viper.SetDefault(string(MetricsPath), "/metrics")
	viper.SetDefault(string(DatabaseType), "sqlite")
	viper.SetDefault(string(AssetsType), "simulated")
	viper.SetDefault(string(BufferRetryInitDelay), "50ms")
	viper.SetDefault(string(BufferRetryMaxDelay), "1s")
	viper.SetDefault(string(BufferRetryFactor), 2.0)
	viper.SetDefault(string(BufferRetryMaxAttempts), 5)
	viper.SetDefault(string(BufferCacheSize), 100)
	viper.SetDefault(string(BufferCacheTTL), "5m")
	viper.SetDefault(string(BufferIdentityStrict), true)
	viper.SetDefault(string(EventsBufferLength), 100)
	viper.SetDefault(string(EventsRedisEnabled), false)
	viper.SetDefault(string(EventsRedisChannel), "mintbuffer.replenish")
	viper.SetDefault(string(EventsKinesisEnabled), false)
	viper.SetDefault(string(WebsocketEnabled), true)
	viper.SetDefault(string(WebsocketPath), "/ws")
	viper.SetDefault(string(WebsocketReadBufferSize), "16Kb")
	viper.SetDefault(string(WebsocketWriteBufferSize), "16Kb")
	viper.SetDefault(string(WebsocketHeartbeatInterval), "30s")
	viper.SetDefault(string(WebsocketBroadcastQueueSize), 50)
	viper.SetDefault(string(ReplenisherEnabled), false)
	viper.SetDefault(string(ReplenisherSymbol), "NEWS")
	viper.SetDefault(string(ReplenisherDefaultFee), 500)
	viper.SetDefault(string(ReplenisherQueueLength), 10)
	viper.SetDefault(string(ReplenisherInflightTimeout), "5m")

	i18n.SetLang(GetString(Lang))
}

// SetupLogging applies the log.* keys to the global logger
func SetupLogging(ctx context.Context) {
	log.SetFormatting(log.Formatting{
		DisableColor:    !GetBool(LogColor),
		TimestampFormat: GetString(LogTimeFormat),
		UTC:             GetBool(LogUTC),
	})
	log.SetLevel(GetString(LogLevel))
	log.L(ctx).Debugf("Log level: %s", GetString(LogLevel))
}

// ReadConfig initializes the config
func ReadConfig(cfgFile string) error {
	Reset()

	// Set precedence order for reading config location
	viper.SetEnvPrefix("mintbuffer")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	if cfgFile != "" {
		f, err := os.Open(cfgFile)
		if err == nil {
			defer f.Close()
			err = viper.ReadConfig(f)
		}
		return err
	}
	viper.SetConfigName("mintbuffer")
	viper.AddConfigPath("/etc/mintbuffer/")
	viper.AddConfigPath("$HOME/.mintbuffer")
	viper.AddConfigPath(".")
	return viper.ReadInConfig()
}

var root = &configPrefix{
	keys: map[string]bool{}, // All keys go here, including those defined in sub prefixies
}

// ark adds a root key, used to define the keys that are used within the core
func ark(k string) RootKey {
	root.AddKnownKey(k)
	return RootKey(k)
}

// configPrefix is the main config structure passed to plugins, and used for root to wrap viper
type configPrefix struct {
	prefix string
	keys   map[string]bool
}

// NewPluginConfig creates a new plugin configuration object, at the specified prefix
func NewPluginConfig(prefix string) Prefix {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return &configPrefix{
		prefix: prefix,
		keys:   root.keys,
	}
}

// GetKnownKeys returns every registered key, sorted
func GetKnownKeys() []string {
	var keys []string
	for k := range root.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *configPrefix) prefixKey(k string) string {
	key := c.prefix + k
	if !c.keys[key] {
		panic(fmt.Sprintf("Undefined configuration key '%s'", key))
	}
	return key
}

func (c *configPrefix) Resolve(key string) string {
	return c.prefixKey(key)
}

func (c *configPrefix) SubPrefix(suffix string) Prefix {
	return &configPrefix{
		prefix: c.prefix + suffix + ".",
		keys:   root.keys,
	}
}

func (c *configPrefix) AddKnownKey(k string, defValue ...interface{}) {
	key := c.prefix + k
	if len(defValue) == 1 {
		viper.SetDefault(key, defValue[0])
	} else if len(defValue) > 0 {
		viper.SetDefault(key, defValue)
	}
	c.keys[key] = true
}

// GetString gets a configuration string
func GetString(key RootKey) string {
	return root.GetString(string(key))
}
func (c *configPrefix) GetString(key string) string {
	return viper.GetString(c.prefixKey(key))
}

// GetStringSlice gets a configuration string array
func GetStringSlice(key RootKey) []string {
	return root.GetStringSlice(string(key))
}
func (c *configPrefix) GetStringSlice(key string) []string {
	return viper.GetStringSlice(c.prefixKey(key))
}

// GetBool gets a configuration bool
func GetBool(key RootKey) bool {
	return root.GetBool(string(key))
}
func (c *configPrefix) GetBool(key string) bool {
	return viper.GetBool(c.prefixKey(key))
}

// GetUint gets a configuration uint
func GetUint(key RootKey) uint {
	return root.GetUint(string(key))
}
func (c *configPrefix) GetUint(key string) uint {
	return viper.GetUint(c.prefixKey(key))
}

// GetInt gets a configuration int
func GetInt(key RootKey) int {
	return root.GetInt(string(key))
}
func (c *configPrefix) GetInt(key string) int {
	return viper.GetInt(c.prefixKey(key))
}

// GetInt64 gets a configuration int64
func GetInt64(key RootKey) int64 {
	return root.GetInt64(string(key))
}
func (c *configPrefix) GetInt64(key string) int64 {
	return viper.GetInt64(c.prefixKey(key))
}

// GetFloat64 gets a configuration float
func GetFloat64(key RootKey) float64 {
	return root.GetFloat64(string(key))
}
func (c *configPrefix) GetFloat64(key string) float64 {
	return viper.GetFloat64(c.prefixKey(key))
}

// GetDuration gets a configuration time duration. A bare number is treated as milliseconds
func GetDuration(key RootKey) time.Duration {
	return root.GetDuration(string(key))
}
func (c *configPrefix) GetDuration(key string) time.Duration {
	v := viper.Get(c.prefixKey(key))
	switch vt := v.(type) {
	case int:
		return time.Duration(vt) * time.Millisecond
	case int64:
		return time.Duration(vt) * time.Millisecond
	case float64:
		return time.Duration(vt) * time.Millisecond
	}
	return viper.GetDuration(c.prefixKey(key))
}

// GetByteSize gets a size in bytes, parsed from values like "16Kb". Returns zero for invalid values
func GetByteSize(key RootKey) int64 {
	return root.GetByteSize(string(key))
}
func (c *configPrefix) GetByteSize(key string) int64 {
	i, _ := units.RAMInBytes(viper.GetString(c.prefixKey(key)))
	return i
}

// GetStringMap gets a configuration map
func GetStringMap(key RootKey) map[string]interface{} {
	return root.GetStringMap(string(key))
}
func (c *configPrefix) GetStringMap(key string) map[string]interface{} {
	return viper.GetStringMap(c.prefixKey(key))
}

// Get gets a configuration in raw form
func Get(key RootKey) interface{} {
	return root.Get(string(key))
}
func (c *configPrefix) Get(key string) interface{} {
	return viper.Get(c.prefixKey(key))
}

// Set allows runtime setting of config (used in unit tests)
func Set(key RootKey, value interface{}) {
	root.Set(string(key), value)
}
func (c *configPrefix) Set(key string, value interface{}) {
	viper.Set(c.prefixKey(key), value)
}

// UnmarshalKey gets a configuration section into a struct
func UnmarshalKey(ctx context.Context, key RootKey, rawVal interface{}) error {
	return root.UnmarshalKey(ctx, string(key), rawVal)
}
func (c *configPrefix) UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error {
	// Viper's unmarshal does not work with our json annotated config
	// structures, so we have to go from map to JSON, then to unmarshal
	var intermediate map[string]interface{}
	err := viper.UnmarshalKey(c.prefixKey(key), &intermediate)
	if err == nil {
		b, _ := json.Marshal(intermediate)
		err = json.Unmarshal(b, rawVal)
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgConfigFailed, key)
	}
	return nil
}
