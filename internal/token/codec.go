// token подписывает и проверяет компактные JWT с произвольным набором claims
// симметричным секретом (семейство HMAC: HS256/HS384/HS512).
//
// Codec не знает о смысле claims: сроки жизни, привязку access/refresh
// и прочую семантику сессий реализует пакет session. Поэтому Codec
// не проверяет стандартные exp/nbf/iat и не добавляет их сам.
//
// Экземпляр Codec неизменяем после создания и безопасен для
// конкурентного использования.
package token

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenEncoding — claims не удалось сериализовать или подписать.
	ErrTokenEncoding = errors.New("token encoding failed")

	// ErrTokenDecoding — подпись неверна, токен повреждён или подписан
	// другим алгоритмом. На HTTP-уровне всегда означает отказ в авторизации.
	ErrTokenDecoding = errors.New("token decoding failed")

	// ErrUnsupportedMethod — запрошен алгоритм вне семейства HMAC.
	ErrUnsupportedMethod = errors.New("unsupported signing method")

	// ErrEmptySecret — попытка создать Codec без секрета.
	ErrEmptySecret = errors.New("empty secret")
)

// secretAlphabet — символы, из которых собирается секрет процесса.
const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Claims — полезная нагрузка токена: строковые ключи и примитивные значения.
// После Decode числа приходят как float64 (стандартная семантика encoding/json).
type Claims map[string]any

// String возвращает строковое значение claim.
func (c Claims) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}

// Int64 возвращает целочисленное значение claim.
// Допускаются float64 без дробной части и json.Number.
func (c Claims) Int64(key string) (int64, bool) {
	switch v := c[key].(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// Codec кодирует и декодирует токены одним секретом и одним алгоритмом.
type Codec struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	parser *jwt.Parser
}

// NewCodec создаёт Codec для алгоритма method ("HS256", "HS384", "HS512").
//
// Поведение:
//   - пустой secret - ErrEmptySecret;
//   - алгоритм не из семейства HMAC (в т.ч. "none") - ErrUnsupportedMethod;
//   - Decode принимает только токены, подписанные этим же алгоритмом,
//     и требует каноничного base64url (иначе один и тот же токен
//     имел бы несколько допустимых написаний);
//   - exp/nbf/iat не проверяются: это обычные claims.
func NewCodec(secret, method string) (*Codec, error) {
	const op = "token.codec.NewCodec"

	if secret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	hmac, ok := jwt.GetSigningMethod(method).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedMethod, method)
	}

	return &Codec{
		method: hmac,
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{hmac.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Method возвращает имя алгоритма подписи.
func (c *Codec) Method() string {
	return c.method.Alg()
}

// Encode сериализует claims и подписывает их секретом.
// Результат детерминирован для одинаковых claims, секрета и алгоритма.
func (c *Codec) Encode(claims Claims) (string, error) {
	const op = "token.codec.Encode"

	signed, err := jwt.NewWithClaims(c.method, jwt.MapClaims(claims)).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrTokenEncoding, err)
	}

	return signed, nil
}

// Decode проверяет подпись и возвращает claims.
// Любая ошибка разбора или проверки сводится к ErrTokenDecoding.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	const op = "token.codec.Decode"

	parsed, err := c.parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnsupportedMethod
		}

		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrTokenDecoding, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenDecoding)
	}

	return Claims(claims), nil
}

// NewSecret генерирует секрет процесса из n случайных буквенно-цифровых символов.
// Используется crypto/rand с отбраковкой, чтобы распределение символов было равномерным.
func NewSecret(n int) (string, error) {
	const op = "token.codec.NewSecret"

	if n <= 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	// Наибольшее кратное длине алфавита значение байта.
	limit := byte(256 - 256%len(secretAlphabet))

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}

			out = append(out, secretAlphabet[int(b)%len(secretAlphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
