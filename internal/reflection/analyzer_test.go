package reflection_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/junioryono/inject/internal/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types
type Database struct {
	ConnectionString string
}

type Logger interface {
	Log(msg string)
}

type ConsoleLogger struct{}

func (c *ConsoleLogger) Log(msg string) {}

type UserService struct {
	DB     *Database
	Logger Logger
}

// Test constructors
func NewDatabase(connStr string) *Database {
	return &Database{ConnectionString: connStr}
}

func NewUserService(db *Database, logger Logger) *UserService {
	return &UserService{DB: db, Logger: logger}
}

func NewUserServiceWithError(db *Database) (*UserService, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return &UserService{DB: db}, nil
}

func TestAnalyzer_SimpleConstructor(t *testing.T) {
	analyzer := reflection.New()

	info, err := analyzer.Analyze(NewDatabase)
	require.NoError(t, err, "Failed to analyze constructor")

	assert.False(t, info.IsInstance())
	assert.False(t, info.HasErrorReturn)
	assert.Equal(t, reflect.TypeOf((*Database)(nil)), info.Out, "Expected *Database return type")

	require.Len(t, info.Parameters, 1, "Expected 1 parameter")
	assert.Equal(t, reflect.TypeOf(""), info.Parameters[0].Type, "Expected string parameter type")
	assert.Equal(t, "arg0", info.Parameters[0].Name)
	assert.Equal(t, 0, info.Parameters[0].Index)
}

func TestAnalyzer_ConstructorWithMultipleParams(t *testing.T) {
	analyzer := reflection.New()

	info, err := analyzer.Analyze(NewUserService)
	require.NoError(t, err, "Failed to analyze constructor")

	require.Len(t, info.Parameters, 2, "Expected 2 parameters")
	assert.Equal(t, reflect.TypeOf((*Database)(nil)), info.Parameters[0].Type, "Expected first parameter to be *Database")
	assert.Equal(t, reflect.TypeOf((*Logger)(nil)).Elem(), info.Parameters[1].Type, "Expected second parameter to be Logger interface")
	assert.Equal(t, "arg1 reflection_test.Logger", info.Parameters[1].String())
}

func TestAnalyzer_ConstructorWithError(t *testing.T) {
	analyzer := reflection.New()

	info, err := analyzer.Analyze(NewUserServiceWithError)
	require.NoError(t, err, "Failed to analyze constructor")

	assert.True(t, info.HasErrorReturn, "Expected HasErrorReturn to be true")
	assert.Equal(t, reflect.TypeOf((*UserService)(nil)), info.Out)
}

func TestAnalyzer_InvalidConstructors(t *testing.T) {
	analyzer := reflection.New()

	tests := []struct {
		name        string
		constructor any
		wantErr     error
	}{
		{"nil", nil, reflection.ErrConstructorNil},
		{"typed nil func", (func() *Database)(nil), reflection.ErrConstructorNil},
		{"not a function", &Database{}, reflection.ErrConstructorNotFunction},
		{"no return", func() {}, reflection.ErrConstructorNoReturn},
		{"too many returns", func() (int, int, error) { return 0, 0, nil }, reflection.ErrConstructorTooManyReturns},
		{"second return not error", func() (int, int) { return 0, 0 }, reflection.ErrConstructorInvalidSecondReturn},
		{"variadic", func(...int) int { return 0 }, reflection.ErrConstructorVariadic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.Analyze(tt.constructor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalyzer_PrivateCopies(t *testing.T) {
	analyzer := reflection.New()

	first, err := analyzer.Analyze(NewUserService)
	require.NoError(t, err)
	second, err := analyzer.Analyze(NewUserService)
	require.NoError(t, err)

	require.NoError(t, first.SetParamNames("db", "logger"))
	assert.Equal(t, "arg0", second.Parameters[0].Name)
}

func TestAnalyzer_ConcurrentAnalysis(t *testing.T) {
	analyzer := reflection.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := analyzer.Analyze(NewUserService)
			assert.NoError(t, err)
			assert.Len(t, info.Parameters, 2)
		}()
	}
	wg.Wait()
}

func TestConstructor_SetParamNames(t *testing.T) {
	analyzer := reflection.New()
	info, err := analyzer.Analyze(NewUserService)
	require.NoError(t, err)

	require.NoError(t, info.SetParamNames("db", "logger"))
	assert.Equal(t, "db", info.Parameters[0].Name)
	assert.Equal(t, "logger", info.Parameters[1].Name)

	err = info.SetParamNames("only-one")
	assert.ErrorIs(t, err, reflection.ErrArgumentCount)
}

func TestConstructor_SetDefault(t *testing.T) {
	analyzer := reflection.New()

	t.Run("assignable default", func(t *testing.T) {
		info, err := analyzer.Analyze(NewDatabase)
		require.NoError(t, err)
		require.NoError(t, info.SetParamNames("dsn"))

		require.NoError(t, info.SetDefault("dsn", "sqlite://memory"))
		params := info.Describe()
		assert.True(t, params[0].HasDefault)
		assert.Equal(t, "sqlite://memory", params[0].Default)
	})

	t.Run("interface default", func(t *testing.T) {
		info, err := analyzer.Analyze(NewUserService)
		require.NoError(t, err)

		require.NoError(t, info.SetDefault("arg1", &ConsoleLogger{}))
		assert.True(t, info.Parameters[1].HasDefault)
	})

	t.Run("nil default means zero value", func(t *testing.T) {
		info, err := analyzer.Analyze(NewUserService)
		require.NoError(t, err)

		require.NoError(t, info.SetDefault("arg1", nil))
		assert.True(t, info.Parameters[1].HasDefault)
		assert.Nil(t, info.Parameters[1].Default)
	})

	t.Run("wrong type", func(t *testing.T) {
		info, err := analyzer.Analyze(NewDatabase)
		require.NoError(t, err)

		err = info.SetDefault("arg0", 42)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not assignable")
	})

	t.Run("unknown name", func(t *testing.T) {
		info, err := analyzer.Analyze(NewDatabase)
		require.NoError(t, err)

		err = info.SetDefault("missing", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no parameter named "missing"`)
	})
}

func TestConstructor_Invoke(t *testing.T) {
	analyzer := reflection.New()

	t.Run("passes arguments in order", func(t *testing.T) {
		info, err := analyzer.Analyze(NewUserService)
		require.NoError(t, err)

		db := &Database{ConnectionString: "x"}
		logger := &ConsoleLogger{}
		result, err := info.Invoke([]any{db, logger})
		require.NoError(t, err)

		svc := result.(*UserService)
		assert.Same(t, db, svc.DB)
		assert.Same(t, logger, svc.Logger)
	})

	t.Run("nil argument becomes zero value", func(t *testing.T) {
		info, err := analyzer.Analyze(NewUserService)
		require.NoError(t, err)

		result, err := info.Invoke([]any{nil, nil})
		require.NoError(t, err)
		assert.Nil(t, result.(*UserService).DB)
	})

	t.Run("constructor error is returned unchanged", func(t *testing.T) {
		info, err := analyzer.Analyze(NewUserServiceWithError)
		require.NoError(t, err)

		_, err = info.Invoke([]any{nil})
		require.EqualError(t, err, "database is required")
	})

	t.Run("panic is recovered", func(t *testing.T) {
		info, err := analyzer.Analyze(func() *Database { panic("boom") })
		require.NoError(t, err)

		_, err = info.Invoke(nil)
		var panicErr *reflection.PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "boom", panicErr.Value)
		assert.NotEmpty(t, panicErr.Stack)
	})

	t.Run("argument count mismatch", func(t *testing.T) {
		info, err := analyzer.Analyze(NewUserService)
		require.NoError(t, err)

		_, err = info.Invoke([]any{&Database{}})
		assert.ErrorIs(t, err, reflection.ErrArgumentCount)
	})

	t.Run("argument type mismatch", func(t *testing.T) {
		info, err := analyzer.Analyze(NewDatabase)
		require.NoError(t, err)

		_, err = info.Invoke([]any{42})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not assignable")
	})
}

func TestAnalyzer_Instance(t *testing.T) {
	analyzer := reflection.New()

	db := &Database{ConnectionString: "prebuilt"}
	info, err := analyzer.Instance(db)
	require.NoError(t, err)

	assert.True(t, info.IsInstance())
	assert.Empty(t, info.Describe())
	assert.Equal(t, "instance of *reflection_test.Database", info.String())

	instance, ok := info.Instance()
	require.True(t, ok)
	assert.Same(t, db, instance)

	result, err := info.Invoke(nil)
	require.NoError(t, err)
	assert.Same(t, db, result)

	ctor, err := analyzer.Analyze(NewDatabase)
	require.NoError(t, err)
	instance, ok = ctor.Instance()
	assert.False(t, ok)
	assert.Nil(t, instance)

	_, err = analyzer.Instance(nil)
	assert.ErrorIs(t, err, reflection.ErrInstanceNil)

	_, err = analyzer.Instance((*Database)(nil))
	assert.ErrorIs(t, err, reflection.ErrInstanceNil)
}

func TestAnalyzer_Callable(t *testing.T) {
	analyzer := reflection.New()

	t.Run("no results", func(t *testing.T) {
		var got *Database
		info, err := analyzer.Callable(func(db *Database) { got = db })
		require.NoError(t, err)
		require.Len(t, info.Parameters, 1)

		db := &Database{}
		result, err := info.Invoke([]any{db})
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Same(t, db, got)
	})

	t.Run("trailing error", func(t *testing.T) {
		info, err := analyzer.Callable(func() error { return errors.New("failed") })
		require.NoError(t, err)
		assert.True(t, info.HasErrorReturn)

		_, err = info.Invoke(nil)
		assert.EqualError(t, err, "failed")
	})

	t.Run("not a function", func(t *testing.T) {
		_, err := analyzer.Callable(42)
		assert.ErrorIs(t, err, reflection.ErrConstructorNotFunction)
	})
}
