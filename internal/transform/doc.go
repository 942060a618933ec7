// Package transform turns cleaned tables into model-ready feature tables.
//
// A fit pass (FitTransform) runs four stages in fixed order: infinity
// replacement, calendar-feature extraction from date columns, categorical
// encoding, and numeric scaling. Every statistic and mapping the stages
// learn is captured in a Result, which is a plain JSON-serializable value:
// supplying it back to Transform replays the identical transformation on
// new data, and InverseTransformColumn reverses a column's scaling, for
// example to bring model predictions back to original units.
//
// The engine itself is stateless between calls. Callers own the Result and
// its lifetime; persisting it and reloading it in another process keeps
// replay and inversion available there too.
package transform
