// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorse-io/mf/base/log"
	"github.com/gorse-io/mf/dataset"
	"github.com/gorse-io/mf/model"
	"github.com/gorse-io/mf/model/mf"
)

var mfCommand = &cobra.Command{
	Use:   "mf TRAIN_FILE",
	Short: "Train a matrix factorization model from a CSV of (row, col, value) triples.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		// load triples
		data, err := loadTriples(args[0])
		if err != nil {
			log.Logger().Fatal("failed to load training data", zap.Error(err))
		}
		log.Logger().Info("loaded training data",
			zap.String("path", args[0]),
			zap.Int("rows", data.NumRows()),
			zap.Int("cols", data.NumCols()),
			zap.Int("entries", data.NumNonzero()))

		// train
		m, err := mf.NewMatrixFactorizer(model.Params{
			model.NFactors:    lo.Must(cmd.PersistentFlags().GetInt("factors")),
			model.NEpochs:     lo.Must(cmd.PersistentFlags().GetInt("epochs")),
			model.BatchSize:   lo.Must(cmd.PersistentFlags().GetInt("batch-size")),
			model.Lr:          lo.Must(cmd.PersistentFlags().GetFloat32("lr")),
			model.Reg:         lo.Must(cmd.PersistentFlags().GetFloat32("reg")),
			model.Alpha:       lo.Must(cmd.PersistentFlags().GetFloat32("alpha")),
			model.Implicit:    lo.Must(cmd.PersistentFlags().GetBool("implicit")),
			model.Loss:        lo.Must(cmd.PersistentFlags().GetString("loss")),
			model.Optimizer:   lo.Must(cmd.PersistentFlags().GetString("optimizer")),
			model.RandomState: lo.Must(cmd.PersistentFlags().GetInt64("random-state")),
		})
		if err != nil {
			log.Logger().Fatal("invalid hyper-parameters", zap.Error(err))
		}
		if err = m.Fit(context.Background(), data); err != nil {
			log.Logger().Fatal("failed to fit model", zap.Error(err))
		}
		history := m.History()
		log.Logger().Info("training complete",
			zap.Int("iterations", len(history)),
			zap.Float32("loss", history[len(history)-1]))

		// save checkpoint
		if output := lo.Must(cmd.PersistentFlags().GetString("output")); output != "" {
			if err = m.Save(output); err != nil {
				log.Logger().Fatal("failed to save checkpoint", zap.Error(err))
			}
			log.Logger().Info("checkpoint saved", zap.String("path", output))
		}
	},
}

// loadTriples reads a headerless CSV of (row, col, value) triples.
func loadTriples(path string) (*dataset.Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Trace(err)
	}
	rows := make([]int32, len(records))
	cols := make([]int32, len(records))
	values := make([]float32, len(records))
	for i, record := range records {
		if len(record) != 3 {
			return nil, errors.Errorf("line %d: expect 3 fields, got %d", i+1, len(record))
		}
		row, err := strconv.ParseInt(record[0], 10, 32)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", i+1)
		}
		col, err := strconv.ParseInt(record[1], 10, 32)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", i+1)
		}
		value, err := strconv.ParseFloat(record[2], 32)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", i+1)
		}
		rows[i] = int32(row)
		cols[i] = int32(col)
		values[i] = float32(value)
	}
	return dataset.NewMatrix(rows, cols, values)
}

func init() {
	mfCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	mfCommand.PersistentFlags().Int("factors", 5, "number of latent factors")
	mfCommand.PersistentFlags().Int("epochs", 500, "number of training iterations")
	mfCommand.PersistentFlags().Int("batch-size", 500, "number of cells sampled per iteration")
	mfCommand.PersistentFlags().Float32("lr", 0.01, "learning rate")
	mfCommand.PersistentFlags().Float32("reg", 0.02, "regularization strength")
	mfCommand.PersistentFlags().Float32("alpha", 1, "confidence weighting strength")
	mfCommand.PersistentFlags().Bool("implicit", false, "treat values as implicit feedback")
	mfCommand.PersistentFlags().String("loss", "squared", "loss function (squared or logistic)")
	mfCommand.PersistentFlags().String("optimizer", "Adam", "optimizer (Adam or Ftrl)")
	mfCommand.PersistentFlags().Int64("random-state", 0, "random seed")
	mfCommand.PersistentFlags().StringP("output", "o", "", "path of the checkpoint to write")
	log.AddFlags(mfCommand.PersistentFlags())
}

func main() {
	if err := mfCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
