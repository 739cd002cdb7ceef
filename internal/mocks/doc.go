// Package mocks provides function-field mock implementations of the
// application's interfaces for use in tests.
//
// Each mock records its calls and either delegates to an optional Fn field or
// returns its default response values:
//
//	gen := &mocks.MockGenerator{
//	    GenerateCardsFn: func(ctx context.Context, in domain.DocumentInput, s domain.CardStyle, o generation.Options) ([]domain.Card, error) {
//	        return []domain.Card{domain.NewBasicCard("Q", "A")}, nil
//	    },
//	}
package mocks
