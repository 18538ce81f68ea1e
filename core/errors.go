// Copyright 2025 Poiesic Systems
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


package core

import "errors"

// Input validation errors
var (
	// ErrQuestionEmpty indicates the question contains no text.
	ErrQuestionEmpty = errors.New("question cannot be empty")

	// ErrQuestionTooLong indicates the question exceeds the configured length limit.
	ErrQuestionTooLong = errors.New("question is too long")

	// ErrTooManyEmoji indicates the question exceeds the configured emoji limit.
	ErrTooManyEmoji = errors.New("question contains too many emoji")

	// ErrUnsafeInput indicates the question contains markup or script fragments.
	ErrUnsafeInput = errors.New("question contains unsafe input")
)
