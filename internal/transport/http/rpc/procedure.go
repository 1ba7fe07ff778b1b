package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	resp "gin-todo-rpc/internal/transport/http/response"
)

type Type string

const (
	TypeQuery    Type = "query"
	TypeMutation Type = "mutation"
)

// Meta 过程的静态描述，日志中间件按它记录
type Meta struct {
	Path      string
	Type      Type
	Protected bool
	Redactor  *Redactor
}

// Procedure I 入参，O 出参；Protected 的过程先走鉴权中间件
type Procedure[I any, O any] struct {
	Path      string // "<namespace>.<procedure>"
	Type      Type
	Protected bool
	Handler   func(ctx Context, in *I) (O, error)
}

// Defaulter 入参可选实现，绑定前填默认值
type Defaulter interface{ Defaults() }

type Options struct {
	// 鉴权中间件，只挂在 Protected 过程上
	Auth gin.HandlerFunc
	// 日志中间件工厂，每个过程一个实例
	Logger        func(Meta) gin.HandlerFunc
	RedactKeys    []string
	MaxInputBytes int
}

type Router struct {
	g     *gin.RouterGroup
	opt   Options
	procs []Meta
}

func NewRouter(g *gin.RouterGroup, opt Options) *Router {
	return &Router{g: g, opt: opt}
}

// Procedures 已注册的过程，按注册顺序
func (r *Router) Procedures() []Meta { return append([]Meta(nil), r.procs...) }

func Query[I any, O any](r *Router, path string, protected bool, h func(Context, *I) (O, error)) {
	Register(r, Procedure[I, O]{Path: path, Type: TypeQuery, Protected: protected, Handler: h})
}

func Mutation[I any, O any](r *Router, path string, protected bool, h func(Context, *I) (O, error)) {
	Register(r, Procedure[I, O]{Path: path, Type: TypeMutation, Protected: protected, Handler: h})
}

// Register 挂载顺序：日志 -> 读入参 -> 鉴权 -> 过程本身，鉴权失败也会带着入参被记录
func Register[I any, O any](r *Router, p Procedure[I, O]) {
	meta := Meta{
		Path:      p.Path,
		Type:      p.Type,
		Protected: p.Protected,
		Redactor:  NewRedactor(reflect.TypeOf((*I)(nil)).Elem(), r.opt.RedactKeys, r.opt.MaxInputBytes),
	}
	r.procs = append(r.procs, meta)

	chain := make([]gin.HandlerFunc, 0, 4)
	if r.opt.Logger != nil {
		chain = append(chain, r.opt.Logger(meta))
	}
	chain = append(chain, captureInput)
	if p.Protected && r.opt.Auth != nil {
		chain = append(chain, r.opt.Auth)
	}
	chain = append(chain, handle(p))

	route := "/" + p.Path
	r.g.POST(route, chain...)
	if p.Type == TypeQuery {
		r.g.GET(route, chain...)
	}
}

func handle[I any, O any](p Procedure[I, O]) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(KeyInput)
		raw, _ := v.([]byte)

		var in I
		if d, ok := any(&in).(Defaulter); ok {
			d.Defaults()
		}
		if err := bindInput(raw, &in); err != nil {
			Abort(c, err)
			return
		}

		out, err := p.Handler(FromGin(c), &in)
		if err != nil {
			Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}
}

func captureInput(c *gin.Context) {
	raw, err := readInput(c)
	if err != nil {
		Abort(c, err)
		return
	}
	c.Set(KeyInput, raw)
}

// readInput GET 取 ?input=，POST 取 body；空输入按 {} 处理
func readInput(c *gin.Context) ([]byte, error) {
	var raw []byte
	if c.Request.Method == http.MethodGet {
		raw = []byte(c.Query("input"))
	} else if c.Request.Body != nil {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, err
			}
			return nil, BadRequest("cannot read request body")
		}
		raw = b
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		raw = nil
	}
	return raw, nil
}

func bindInput(raw []byte, in any) error {
	var err error
	if len(raw) == 0 {
		err = binding.Validator.ValidateStruct(in)
	} else {
		err = binding.JSON.BindBody(raw, in)
	}
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	// 解码细节含 Go 类型名，只进日志
	var (
		syn *json.SyntaxError
		typ *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &typ):
		msg := "invalid input: wrong type"
		if typ.Field != "" {
			msg += " for " + typ.Field
		}
		return &Error{Kind: KindBadRequest, Msg: msg, Err: err}
	case errors.As(err, &syn):
		return &Error{Kind: KindBadRequest, Msg: "invalid input: malformed JSON", Err: err}
	}
	return &Error{Kind: KindBadRequest, Msg: "invalid input", Err: err}
}
