package session

import (
	"creativehub/authority"
	"creativehub/bizerror"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const TokenExpiration = 24 * time.Hour

var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}
		securityContextValue, found := TokenCache.Get(token)
		if !found {
			panic(bizerror.ErrUnauthenticated)
		}
		secCtx, ok := securityContextValue.(*Session)
		if !ok {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, secCtx)
		ctx.Next()
	}
}

func InjectSessionIntoGinContext(ctx *gin.Context, secCtx *Session) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

// bearer header first, then cookie
func extractToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	token, err := ctx.Cookie(KeySecToken)
	if err != nil {
		return ""
	}
	return token
}

type tokenEntry struct {
	Token    string   `yaml:"token"`
	Identity Identity `yaml:"identity"`
	Perms    []string `yaml:"perms"`
}

type tokensFile struct {
	Tokens []tokenEntry `yaml:"tokens"`
}

// LoadTokensFile seeds TokenCache with non-expiring sessions:
//
//	tokens:
//	  - token: abc
//	    identity: {id: 1, uuid: "...", name: admin}
//	    perms: ["system:admin"]
func LoadTokensFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return LoadTokens(data)
}

func LoadTokens(data []byte) (int, error) {
	var file tokensFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse tokens: %w", err)
	}

	now := time.Now()
	for i, entry := range file.Tokens {
		if entry.Token == "" {
			return i, fmt.Errorf("token #%d is empty", i)
		}
		if entry.Identity.ID == types.ID(0) {
			return i, fmt.Errorf("token #%d has no identity id", i)
		}
		TokenCache.Set(entry.Token, &Session{
			Token:       entry.Token,
			Identity:    entry.Identity,
			Perms:       authority.Permissions(entry.Perms),
			SigningTime: now,
		}, cache.NoExpiration)
	}
	logrus.Infof("%d session tokens loaded", len(file.Tokens))
	return len(file.Tokens), nil
}

// IdentitiesWithRole lists the distinct identities of cached sessions holding role.
func IdentitiesWithRole(role string) []Identity {
	seen := map[types.ID]bool{}
	identities := []Identity{}
	for _, item := range TokenCache.Items() {
		s, ok := item.Object.(*Session)
		if !ok || seen[s.Identity.ID] || !s.Perms.HasRole(role) {
			continue
		}
		seen[s.Identity.ID] = true
		identities = append(identities, s.Identity)
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].ID < identities[j].ID })
	return identities
}
